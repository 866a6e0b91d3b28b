package schema

import "strings"

// FieldType is the type tag declared by a field definition.
type FieldType string

const (
	FieldTypeText       FieldType = "text"
	FieldTypeNumber     FieldType = "number"
	FieldTypeSelect     FieldType = "select"
	FieldTypeRadio      FieldType = "radio"
	FieldTypeCheckbox   FieldType = "checkbox"
	FieldTypeRepeatable FieldType = "repeatable"
)

// Known reports whether the type tag belongs to the supported variant set.
func (t FieldType) Known() bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeSelect, FieldTypeRadio, FieldTypeCheckbox, FieldTypeRepeatable:
		return true
	default:
		return false
	}
}

// Field is the closed set of field variants: Input, Choice, Repeatable and
// Unknown. Callers switch on the concrete type to reach the variant payload.
type Field interface {
	Name() string
	Label() string
	Type() FieldType
	IsRequired() bool
	Help() string

	sealed()
}

// Attributes carries the properties shared by every field variant.
type Attributes struct {
	Name     string
	Label    string
	Required bool
	Help     string
}

func (a Attributes) label() string {
	if label := strings.TrimSpace(a.Label); label != "" {
		return label
	}
	return a.Name
}

// Input is a single-valued control without extra payload: text, number or
// checkbox.
type Input struct {
	Attrs Attributes
	Kind  FieldType
}

func (f Input) Name() string     { return f.Attrs.Name }
func (f Input) Label() string    { return f.Attrs.label() }
func (f Input) Type() FieldType  { return f.Kind }
func (f Input) IsRequired() bool { return f.Attrs.Required }
func (f Input) Help() string     { return f.Attrs.Help }
func (Input) sealed()            {}

// Choice is a select or radio field restricted to Options.
type Choice struct {
	Attrs   Attributes
	Kind    FieldType
	Options []string
}

func (f Choice) Name() string     { return f.Attrs.Name }
func (f Choice) Label() string    { return f.Attrs.label() }
func (f Choice) Type() FieldType  { return f.Kind }
func (f Choice) IsRequired() bool { return f.Attrs.Required }
func (f Choice) Help() string     { return f.Attrs.Help }
func (Choice) sealed()            {}

// Has reports whether value is one of the declared options.
func (f Choice) Has(value string) bool {
	for _, option := range f.Options {
		if option == value {
			return true
		}
	}
	return false
}

// Repeatable holds a variable number of sub-records, each following Fields.
type Repeatable struct {
	Attrs  Attributes
	Fields []Field
}

func (f Repeatable) Name() string     { return f.Attrs.Name }
func (f Repeatable) Label() string    { return f.Attrs.label() }
func (f Repeatable) Type() FieldType  { return FieldTypeRepeatable }
func (f Repeatable) IsRequired() bool { return f.Attrs.Required }
func (f Repeatable) Help() string     { return f.Attrs.Help }
func (Repeatable) sealed()            {}

// SubField returns the nested field declared under name.
func (f Repeatable) SubField(name string) (Field, bool) {
	for _, field := range f.Fields {
		if field.Name() == name {
			return field, true
		}
	}
	return nil, false
}

// Unknown keeps a field whose type tag is not recognised. It renders nothing,
// which lets schemas carry types introduced by newer renderers.
type Unknown struct {
	Attrs Attributes
	Tag   string
}

func (f Unknown) Name() string     { return f.Attrs.Name }
func (f Unknown) Label() string    { return f.Attrs.label() }
func (f Unknown) Type() FieldType  { return FieldType(f.Tag) }
func (f Unknown) IsRequired() bool { return f.Attrs.Required }
func (f Unknown) Help() string     { return f.Attrs.Help }
func (Unknown) sealed()            {}

// Text builds a text input.
func Text(name, label string, required bool) Input {
	return Input{Attrs: Attributes{Name: name, Label: label, Required: required}, Kind: FieldTypeText}
}

// Number builds a number input.
func Number(name, label string, required bool) Input {
	return Input{Attrs: Attributes{Name: name, Label: label, Required: required}, Kind: FieldTypeNumber}
}

// Checkbox builds a boolean toggle.
func Checkbox(name, label string, required bool) Input {
	return Input{Attrs: Attributes{Name: name, Label: label, Required: required}, Kind: FieldTypeCheckbox}
}

// Select builds a dropdown over options.
func Select(name, label string, required bool, options ...string) Choice {
	return Choice{Attrs: Attributes{Name: name, Label: label, Required: required}, Kind: FieldTypeSelect, Options: options}
}

// Radio builds a radio group over options.
func Radio(name, label string, required bool, options ...string) Choice {
	return Choice{Attrs: Attributes{Name: name, Label: label, Required: required}, Kind: FieldTypeRadio, Options: options}
}

// Group builds a repeatable field over the nested fields.
func Group(name, label string, required bool, fields ...Field) Repeatable {
	return Repeatable{Attrs: Attributes{Name: name, Label: label, Required: required}, Fields: fields}
}

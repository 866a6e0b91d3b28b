package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyDocument is returned when a schema payload has no content.
	ErrEmptyDocument = errors.New("schema: document is empty")
	// ErrNoSteps is returned when a schema declares no steps at all.
	ErrNoSteps = errors.New("schema: document declares no steps")
)

type fieldDoc struct {
	Name     string     `json:"name" yaml:"name"`
	Label    string     `json:"label,omitempty" yaml:"label,omitempty"`
	Type     string     `json:"type" yaml:"type"`
	Required bool       `json:"required,omitempty" yaml:"required,omitempty"`
	Help     string     `json:"help,omitempty" yaml:"help,omitempty"`
	Options  []string   `json:"options,omitempty" yaml:"options,omitempty"`
	Fields   []fieldDoc `json:"fields,omitempty" yaml:"fields,omitempty"`
}

type stepDoc struct {
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []fieldDoc `json:"fields" yaml:"fields"`
}

type schemaDoc struct {
	Title string    `json:"title,omitempty" yaml:"title,omitempty"`
	Steps []stepDoc `json:"steps" yaml:"steps"`
}

// Load reads a schema from the file system path.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	doc, err := NewDocument(SourceFromFile(path), data)
	if err != nil {
		return nil, err
	}
	return Parse(doc)
}

// LoadFS reads a schema from name inside fsys.
func LoadFS(fsys fs.FS, name string) (*Schema, error) {
	if fsys == nil {
		return nil, errors.New("schema: fs is nil")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", name, err)
	}
	doc, err := NewDocument(SourceFromFS(name), data)
	if err != nil {
		return nil, err
	}
	return Parse(doc)
}

// ParseBytes parses an in-memory JSON or YAML payload.
func ParseBytes(data []byte) (*Schema, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}
	doc, err := NewDocument(SourceFromBytes("inline"), data)
	if err != nil {
		return nil, err
	}
	return Parse(doc)
}

// Parse decodes a JSON or YAML document. The payload is either a bare list of
// steps or an object with "title" and "steps".
func Parse(doc Document) (*Schema, error) {
	raw := doc.Raw()
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyDocument
	}

	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("schema: parse %s: %w", doc.Location(), err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, ErrEmptyDocument
	}

	var parsed schemaDoc
	node := root.Content[0]
	switch node.Kind {
	case yaml.SequenceNode:
		if err := node.Decode(&parsed.Steps); err != nil {
			return nil, fmt.Errorf("schema: decode steps in %s: %w", doc.Location(), err)
		}
	case yaml.MappingNode:
		if err := node.Decode(&parsed); err != nil {
			return nil, fmt.Errorf("schema: decode %s: %w", doc.Location(), err)
		}
	default:
		return nil, fmt.Errorf("schema: %s must be a list of steps or an object", doc.Location())
	}

	if len(parsed.Steps) == 0 {
		return nil, ErrNoSteps
	}

	steps := make([]Step, 0, len(parsed.Steps))
	for _, sd := range parsed.Steps {
		steps = append(steps, Step{
			Title:       sd.Title,
			Description: sd.Description,
			Fields:      toFields(sd.Fields),
		})
	}
	return New(parsed.Title, steps...), nil
}

func toFields(docs []fieldDoc) []Field {
	if len(docs) == 0 {
		return nil
	}
	out := make([]Field, 0, len(docs))
	for _, fd := range docs {
		out = append(out, toField(fd))
	}
	return out
}

func toField(fd fieldDoc) Field {
	attrs := Attributes{
		Name:     strings.TrimSpace(fd.Name),
		Label:    fd.Label,
		Required: fd.Required,
		Help:     fd.Help,
	}
	kind := FieldType(strings.ToLower(strings.TrimSpace(fd.Type)))
	switch kind {
	case FieldTypeText, FieldTypeNumber, FieldTypeCheckbox:
		return Input{Attrs: attrs, Kind: kind}
	case FieldTypeSelect, FieldTypeRadio:
		return Choice{Attrs: attrs, Kind: kind, Options: append([]string(nil), fd.Options...)}
	case FieldTypeRepeatable:
		return Repeatable{Attrs: attrs, Fields: toFields(fd.Fields)}
	default:
		return Unknown{Attrs: attrs, Tag: fd.Type}
	}
}

func fromFields(fields []Field) []fieldDoc {
	if len(fields) == 0 {
		return nil
	}
	out := make([]fieldDoc, 0, len(fields))
	for _, field := range fields {
		fd := fieldDoc{
			Name:     field.Name(),
			Type:     string(field.Type()),
			Required: field.IsRequired(),
			Help:     field.Help(),
		}
		switch f := field.(type) {
		case Input:
			fd.Label = f.Attrs.Label
		case Choice:
			fd.Label = f.Attrs.Label
			fd.Options = append([]string(nil), f.Options...)
		case Repeatable:
			fd.Label = f.Attrs.Label
			fd.Fields = fromFields(f.Fields)
		case Unknown:
			fd.Label = f.Attrs.Label
		}
		out = append(out, fd)
	}
	return out
}

// MarshalJSON encodes the schema back into its document shape.
func (s *Schema) MarshalJSON() ([]byte, error) {
	doc := schemaDoc{Title: s.Title()}
	for _, step := range s.Steps() {
		doc.Steps = append(doc.Steps, stepDoc{
			Title:       step.Title,
			Description: step.Description,
			Fields:      fromFields(step.Fields),
		})
	}
	return json.Marshal(doc)
}

package contract

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

// PayloadSchema mirrors the answer record: strings for text and number,
// booleans for checkboxes, enums for choices, arrays of objects for
// repeatable groups. Required top-level scalar fields are listed as required.
func PayloadSchema(s *schema.Schema) *openapi3.Schema {
	root := openapi3.NewObjectSchema()
	seen := make(map[string]struct{})
	for _, field := range s.Fields() {
		if _, dup := seen[field.Name()]; dup {
			continue
		}
		seen[field.Name()] = struct{}{}
		prop := fieldSchema(field)
		if prop == nil {
			continue
		}
		root.WithProperty(field.Name(), prop)
		if field.IsRequired() && field.Type() != schema.FieldTypeRepeatable {
			root.Required = append(root.Required, field.Name())
		}
	}
	return root
}

func fieldSchema(field schema.Field) *openapi3.Schema {
	var out *openapi3.Schema
	switch f := field.(type) {
	case schema.Input:
		switch f.Kind {
		case schema.FieldTypeCheckbox:
			out = openapi3.NewBoolSchema()
		case schema.FieldTypeNumber:
			out = openapi3.NewStringSchema()
			out.Pattern = `^-?[0-9]*\.?[0-9]*$`
		default:
			out = openapi3.NewStringSchema()
		}
	case schema.Choice:
		out = openapi3.NewStringSchema()
		enum := make([]any, 0, len(f.Options)+1)
		if !f.IsRequired() {
			enum = append(enum, "")
		}
		for _, option := range f.Options {
			enum = append(enum, option)
		}
		out.WithEnum(enum...)
	case schema.Repeatable:
		item := openapi3.NewObjectSchema()
		for _, sub := range f.Fields {
			subSchema := fieldSchema(sub)
			if subSchema == nil {
				continue
			}
			item.WithProperty(sub.Name(), subSchema)
			if sub.IsRequired() {
				item.Required = append(item.Required, sub.Name())
			}
		}
		out = openapi3.NewArraySchema().WithItems(item)
	default:
		return nil
	}
	if field.IsRequired() && isString(field) {
		out.MinLength = 1
	}
	out.Title = field.Label()
	if help := field.Help(); help != "" {
		out.Description = help
	}
	return out
}

func isString(field schema.Field) bool {
	switch field.Type() {
	case schema.FieldTypeText, schema.FieldTypeNumber, schema.FieldTypeSelect, schema.FieldTypeRadio:
		return true
	default:
		return false
	}
}

package components

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/render"
)

const templatePrefix = "templates/components/"

// NewDefaultRegistry constructs a registry with a component per supported
// field type. Unknown types have no component and render nothing.
func NewDefaultRegistry() *Registry {
	registry := New()

	registry.MustRegister(NameText, Descriptor{
		Renderer: templateComponentRenderer("forms.text", templatePrefix+"input.tmpl"),
	})
	registry.MustRegister(NameNumber, Descriptor{
		Renderer: templateComponentRenderer("forms.number", templatePrefix+"input.tmpl"),
	})
	registry.MustRegister(NameSelect, Descriptor{
		Renderer: templateComponentRenderer("forms.select", templatePrefix+"select.tmpl"),
	})
	registry.MustRegister(NameRadio, Descriptor{
		Renderer: templateComponentRenderer("forms.radio", templatePrefix+"radio.tmpl"),
	})
	registry.MustRegister(NameCheckbox, Descriptor{
		Renderer: templateComponentRenderer("forms.checkbox", templatePrefix+"checkbox.tmpl"),
	})
	registry.MustRegister(NameRepeatable, Descriptor{
		Renderer: repeatableRenderer,
	})

	return registry
}

func templateComponentRenderer(partialKey, templateName string) Renderer {
	return func(buf *bytes.Buffer, field render.FieldView, data ComponentData) error {
		return renderPartial(buf, partialKey, templateName, map[string]any{"field": field}, data)
	}
}

// repeatableRenderer renders every entry's sub-fields through RenderChild and
// hands the pre-rendered markup to the group template.
func repeatableRenderer(buf *bytes.Buffer, field render.FieldView, data ComponentData) error {
	if field.Group == nil {
		return nil
	}
	if data.RenderChild == nil {
		return fmt.Errorf("components: repeatable %q needs a child renderer", field.Name)
	}

	entries := make([]map[string]any, 0, len(field.Group.Entries))
	for _, entry := range field.Group.Entries {
		var body strings.Builder
		for _, child := range entry.Fields {
			markup, err := data.RenderChild(child)
			if err != nil {
				return fmt.Errorf("components: render %s: %w", child.Name, err)
			}
			body.WriteString(markup)
		}
		entries = append(entries, map[string]any{
			"index":         entry.Index,
			"number":        entry.Number,
			"title":         entry.Title,
			"remove_action": entry.RemoveAction,
			"remove_label":  entry.RemoveLabel,
			"body":          body.String(),
		})
	}

	return renderPartial(buf, "forms.repeatable", templatePrefix+"repeatable.tmpl", map[string]any{
		"field":   field,
		"entries": entries,
	}, data)
}

func renderPartial(buf *bytes.Buffer, partialKey, templateName string, payload map[string]any, data ComponentData) error {
	if data.Template == nil {
		return fmt.Errorf("components: template renderer not configured for %q", templateName)
	}

	resolved := templateName
	if data.ThemePartials != nil {
		if candidate := strings.TrimSpace(data.ThemePartials[partialKey]); candidate != "" {
			resolved = candidate
		}
	}

	rendered, err := data.Template.RenderTemplate(resolved, payload)
	if err != nil {
		return fmt.Errorf("components: render template %q: %w", resolved, err)
	}
	buf.WriteString(rendered)
	return nil
}

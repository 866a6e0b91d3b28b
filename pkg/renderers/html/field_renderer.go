package html

import (
	"bytes"
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/render/template"
	"github.com/goliatone/go-formwizard/pkg/renderers/html/components"
)

type componentRenderer struct {
	templates template.TemplateRenderer
	registry  *components.Registry
	partials  map[string]string
	policy    *bluemonday.Policy

	usedComponents map[string]struct{}
}

func newComponentRenderer(templates template.TemplateRenderer, registry *components.Registry, partials map[string]string, policy *bluemonday.Policy) *componentRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	return &componentRenderer{
		templates:      templates,
		registry:       registry,
		partials:       partials,
		policy:         policy,
		usedComponents: make(map[string]struct{}),
	}
}

func (r *componentRenderer) renderAll(fields []render.FieldView) (string, error) {
	var out strings.Builder
	for _, field := range fields {
		markup, err := r.render(field)
		if err != nil {
			return "", err
		}
		out.WriteString(markup)
	}
	return out.String(), nil
}

// render produces the control plus its chrome. Fields of an unrecognised
// type have no component and produce no markup.
func (r *componentRenderer) render(field render.FieldView) (string, error) {
	if !field.Known {
		return "", nil
	}

	descriptor, ok := r.registry.Descriptor(field.Type)
	if !ok {
		return "", fmt.Errorf("component %q not registered for field %q", field.Type, field.Name)
	}

	data := components.ComponentData{
		Template:      r.templates,
		RenderChild:   r.render,
		ThemePartials: r.partials,
	}

	var control bytes.Buffer
	if err := descriptor.Renderer(&control, field, data); err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", field.Type, field.Name, err)
	}

	r.usedComponents[descriptor.Name] = struct{}{}

	return r.fieldMarkup(field, control.String()), nil
}

func (r *componentRenderer) stylesheets() []string {
	if len(r.usedComponents) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.usedComponents))
	for name := range r.usedComponents {
		names = append(names, name)
	}
	slices.Sort(names)
	return r.registry.Stylesheets(names)
}

func (r *componentRenderer) sanitize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || r.policy == nil {
		return html.EscapeString(raw)
	}
	return r.policy.Sanitize(raw)
}

func (r *componentRenderer) fieldMarkup(field render.FieldView, control string) string {
	var builder strings.Builder
	builder.Grow(len(control) + 256)

	builder.WriteString(`<div class="fw-field`)
	if len(field.Errors) > 0 {
		builder.WriteString(` has-error`)
	}
	builder.WriteString(`" data-component="`)
	builder.WriteString(html.EscapeString(field.Type))
	builder.WriteString(`">`)
	builder.WriteByte('\n')

	label := html.EscapeString(field.Label)
	if field.Required {
		label += ` <span class="fw-required" aria-hidden="true">*</span>`
	}
	switch field.Type {
	case components.NameRepeatable, components.NameRadio:
		builder.WriteString(`  <span class="fw-label" id="`)
		builder.WriteString(html.EscapeString(field.ID))
		builder.WriteString(`-label">`)
		builder.WriteString(label)
		builder.WriteString("</span>\n")
	default:
		builder.WriteString(`  <label for="`)
		builder.WriteString(html.EscapeString(field.ID))
		builder.WriteString(`" class="fw-label">`)
		builder.WriteString(label)
		builder.WriteString("</label>\n")
	}

	for _, line := range strings.Split(control, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		builder.WriteString("  ")
		builder.WriteString(line)
		builder.WriteByte('\n')
	}

	if help := r.sanitize(field.Help); help != "" {
		builder.WriteString(`  <small class="fw-help">`)
		builder.WriteString(help)
		builder.WriteString("</small>\n")
	}

	for _, message := range field.Errors {
		builder.WriteString(`  <p class="fw-error" role="alert">`)
		builder.WriteString(html.EscapeString(message))
		builder.WriteString("</p>\n")
	}

	builder.WriteString("</div>\n")
	return builder.String()
}

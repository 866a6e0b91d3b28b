package components

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/render"
)

func noopRenderer(*bytes.Buffer, render.FieldView, ComponentData) error { return nil }

func TestRegistryDescriptorClone(t *testing.T) {
	reg := New()
	if err := reg.Register("Text", Descriptor{Renderer: noopRenderer, Stylesheets: []string{"/a.css"}}); err != nil {
		t.Fatalf("register: %v", err)
	}

	desc, ok := reg.Descriptor("text")
	if !ok {
		t.Fatalf("descriptor not found")
	}
	desc.Stylesheets = append(desc.Stylesheets, "/mutated.css")

	original, _ := reg.Descriptor("text")
	if diff := cmp.Diff([]string{"/a.css"}, original.Stylesheets); diff != "" {
		t.Fatalf("registry descriptor mutated (-want +got):\n%s", diff)
	}
	if err := reg.Register("  ", Descriptor{Renderer: noopRenderer}); err == nil {
		t.Fatalf("expected blank name to be rejected")
	}
	if err := reg.Register("radio", Descriptor{}); err == nil {
		t.Fatalf("expected nil renderer to be rejected")
	}
}

func TestRegistryStylesheetsDeduplicates(t *testing.T) {
	reg := New()
	reg.MustRegister(NameText, Descriptor{Renderer: noopRenderer, Stylesheets: []string{"/shared.css", "/input.css"}})
	reg.MustRegister(NameSelect, Descriptor{Renderer: noopRenderer, Stylesheets: []string{"/shared.css", "/select.css"}})

	got := reg.Stylesheets([]string{NameText, NameSelect, "ghost"})
	want := []string{"/shared.css", "/input.css", "/select.css"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stylesheets mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultRegistryCoversFieldTypes(t *testing.T) {
	want := []string{NameCheckbox, NameNumber, NameRadio, NameRepeatable, NameSelect, NameText}
	if diff := cmp.Diff(want, NewDefaultRegistry().Names()); diff != "" {
		t.Fatalf("default components mismatch (-want +got):\n%s", diff)
	}
}

package render_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/answers"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/schema"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

func pageSchema() *schema.Schema {
	return schema.New("Signup",
		schema.Step{Title: "About", Description: "Who are you?", Fields: []schema.Field{
			schema.Text("name", "Name", true),
			schema.Select("plan", "Plan", false, "free", "pro"),
			schema.Checkbox("agree", "Agree", false),
		}},
		schema.Step{Title: "Contacts", Fields: []schema.Field{
			schema.Group("contacts", "Contact", false, schema.Text("email", "Email", true)),
		}},
	)
}

func newPageController(t *testing.T) *wizard.Controller {
	t.Helper()
	c, err := wizard.NewController(pageSchema())
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	return c
}

func TestBuildPage_FirstStep(t *testing.T) {
	c := newPageController(t)
	_ = c.HandleChange(answers.Top("plan"), "pro")
	_ = c.HandleChange(answers.Top("agree"), true)

	page := render.BuildPage(c, render.RenderOptions{
		Errors: map[string][]string{"name": {"Name is required"}},
		Hidden: render.MergeHiddenFields(nil, render.StepField(0)),
	})

	if page.Buttons.Back != nil {
		t.Fatalf("back button must be hidden on the first step")
	}
	if diff := cmp.Diff(&render.Button{Label: "Next", Action: "next"}, page.Buttons.Primary); diff != "" {
		t.Fatalf("primary button mismatch (-want +got):\n%s", diff)
	}
	if page.Heading != "About" || page.StepLabel != "Step 1 of 2" || page.Action != "/" {
		t.Fatalf("unexpected chrome %+v", page)
	}
	if len(page.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(page.Fields))
	}

	name := page.Fields[0]
	if name.Value != "" || name.ID != "field-name" {
		t.Fatalf("unexpected name view %+v", name)
	}
	if diff := cmp.Diff([]string{"Name is required"}, name.Errors); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	plan := page.Fields[1]
	if plan.Placeholder != "Select Plan" {
		t.Fatalf("unexpected placeholder %q", plan.Placeholder)
	}
	wantOptions := []render.OptionView{{Value: "free"}, {Value: "pro", Selected: true}}
	if diff := cmp.Diff(wantOptions, plan.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if !page.Fields[2].Checked {
		t.Fatalf("expected checkbox to be checked")
	}
	if diff := cmp.Diff([]render.HiddenField{{Name: "_step", Value: "0"}}, page.Hidden); diff != "" {
		t.Fatalf("hidden mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildPage_LastStepWithGroups(t *testing.T) {
	c := newPageController(t)
	_ = c.HandleChange(answers.Top("name"), "Ada")
	if err := c.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	_ = c.HandleSubChange("contacts", 0, "email", "ada@example.com")
	_ = c.AddGroup("contacts")

	page := render.BuildPage(c, render.RenderOptions{})
	if page.Buttons.Back == nil || page.Buttons.Primary.Label != "Review" {
		t.Fatalf("expected back and review buttons, got %+v", page.Buttons)
	}

	group := page.Fields[0].Group
	if group == nil || len(group.Entries) != 2 {
		t.Fatalf("expected two entries, got %+v", group)
	}
	if group.AddAction != "add:contacts" || group.AddLabel != "Add Contact" {
		t.Fatalf("unexpected add control %+v", group)
	}
	second := group.Entries[1]
	if second.RemoveAction != "remove:contacts:1" || second.Title != "Contact #2" {
		t.Fatalf("unexpected entry chrome %+v", second)
	}
	if got := group.Entries[0].Fields[0]; got.Name != "contacts.0.email" || got.Value != "ada@example.com" {
		t.Fatalf("unexpected nested field %+v", got)
	}
}

func TestBuildPage_PreviewAndSubmission(t *testing.T) {
	c := newPageController(t)
	_ = c.HandleChange(answers.Top("name"), "Ada")
	_ = c.Next()
	_ = c.Next()

	page := render.BuildPage(c, render.RenderOptions{
		Translator: render.MapTranslator{"": {render.KeySubmit: "Send it"}},
	})
	if page.Phase != wizard.PhasePreview || page.Preview == nil {
		t.Fatalf("expected preview page, got %s", page.Phase)
	}
	if page.Preview.Title != "Review Your Submission" || page.Preview.Text != "Name: Ada\n" {
		t.Fatalf("unexpected preview %+v", page.Preview)
	}
	if page.Buttons.Primary.Label != "Send it" || page.Buttons.Primary.Action != "submit" {
		t.Fatalf("unexpected primary %+v", page.Buttons.Primary)
	}

	sub, err := c.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	done := render.BuildPage(c, render.RenderOptions{Submission: &sub})
	if done.Submission == nil || done.Submission.Payload != "{\n  \"name\": \"Ada\"\n}" {
		t.Fatalf("unexpected submission %+v", done.Submission)
	}
	if done.Buttons.Back != nil || done.Buttons.Primary != nil {
		t.Fatalf("submitted page must not offer navigation")
	}
}

func TestParseAction(t *testing.T) {
	cases := map[string]render.Action{
		"":                  {Kind: render.ActionSave},
		"next":              {Kind: render.ActionNext},
		"back":              {Kind: render.ActionBack},
		"submit":            {Kind: render.ActionSubmit},
		"add:contacts":      render.AddAction("contacts"),
		"remove:contacts:3": render.RemoveAction("contacts", 3),
	}
	for raw, want := range cases {
		got, err := render.ParseAction(raw)
		if err != nil {
			t.Fatalf("ParseAction(%q): %v", raw, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("ParseAction(%q) mismatch (-want +got):\n%s", raw, diff)
		}
		if raw != "" && got.String() != raw {
			t.Fatalf("String() = %q, want %q", got.String(), raw)
		}
	}
	for _, raw := range []string{"jump", "add:", "remove:contacts", "remove:contacts:x", "next:1"} {
		if _, err := render.ParseAction(raw); err == nil {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

type fakeRenderer struct{ name string }

func (f fakeRenderer) Name() string        { return f.name }
func (f fakeRenderer) ContentType() string { return "text/plain" }
func (f fakeRenderer) Render(_ context.Context, page render.Page) ([]byte, error) {
	return []byte(page.Heading), nil
}

func TestRegistry_ResolveIsCaseInsensitive(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(fakeRenderer{name: "HTML"})
	if err := registry.Register(fakeRenderer{name: "html"}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	got, err := registry.Resolve("", "html")
	if err != nil || got.Name() != "HTML" {
		t.Fatalf("unexpected resolve %v, %v", got, err)
	}
	if _, err := registry.Get("pdf"); !errors.Is(err, render.ErrRendererNotFound) {
		t.Fatalf("expected ErrRendererNotFound, got %v", err)
	}
	if diff := cmp.Diff([]string{"html"}, registry.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}

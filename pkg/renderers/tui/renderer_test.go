package tui

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/muesli/termenv"

	"github.com/goliatone/go-formwizard/pkg/answers"
	"github.com/goliatone/go-formwizard/pkg/preview"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/schema"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	infoMessages []string
	selectCfgs   []SelectConfig
	inputPos     int
	selectPos    int
	confirmPos   int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selectCfgs = append(s.selectCfgs, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func fillSchema() *schema.Schema {
	return schema.New("Signup",
		schema.Step{Title: "About", Fields: []schema.Field{
			schema.Text("name", "Name", true),
			schema.Select("plan", "Plan", false, "free", "pro"),
			schema.Checkbox("agree", "Agree", false),
			schema.Unknown{Attrs: schema.Attributes{Name: "birthday"}, Tag: "date"},
		}},
		schema.Step{Title: "Contacts", Fields: []schema.Field{
			schema.Group("contacts", "Contact", false, schema.Text("email", "Email", true)),
		}},
	)
}

func newTestRenderer(t *testing.T, driver PromptDriver) *Renderer {
	t.Helper()
	r, err := New(
		WithPromptDriver(driver),
		WithOutput(io.Discard),
		WithProfile(termenv.Ascii),
		WithOutputFormat(preview.FormatJSON),
	)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestFill_WalksStepsAndRepromptsInvalidStep(t *testing.T) {
	driver := &stubDriver{
		inputs:  []string{"", "Ada", "ada@example.com"},
		confirm: []bool{true, true},
		// plan=pro, Next (fails), plan=pro, Next, Add, Continue, Review, Submit
		selectIdx: []int{2, 0, 2, 0, 0, 2, 0, 0},
	}
	c, err := wizard.NewController(fillSchema())
	if err != nil {
		t.Fatalf("controller: %v", err)
	}

	result, err := newTestRenderer(t, driver).Fill(context.Background(), c)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if c.Phase() != wizard.PhaseSubmitted {
		t.Fatalf("expected submitted phase, got %s", c.Phase())
	}

	var got map[string]any
	if err := json.Unmarshal(result.Payload, &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	want := map[string]any{
		"name":     "Ada",
		"plan":     "pro",
		"agree":    true,
		"contacts": []any{map[string]any{"email": "ada@example.com"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}

	var sawError bool
	for _, msg := range driver.infoMessages {
		if msg == "✗ Name is required" {
			sawError = true
		}
	}
	if !sawError {
		t.Fatalf("expected validation message, got %q", driver.infoMessages)
	}

	if diff := cmp.Diff([]string{"(none)", "free", "pro"}, driver.selectCfgs[0].Options); diff != "" {
		t.Fatalf("optional select options mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Add Contact", "Remove Contact #1", "Continue"}, driver.selectCfgs[5].Options); diff != "" {
		t.Fatalf("group menu mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_BackFromPreviewAndRemoveEntry(t *testing.T) {
	c, _ := wizard.NewController(fillSchema())
	_ = c.HandleChange(answers.Top("name"), "Ada")
	_ = c.HandleSubChange("contacts", 0, "email", "a@example.com")
	_ = c.Next()
	_ = c.Next()

	driver := &stubDriver{
		inputs: []string{"b@example.com"},
		// Back, Remove #1, Continue, Review, Submit
		selectIdx: []int{1, 1, 1, 0, 0},
	}
	result, err := newTestRenderer(t, driver).Fill(context.Background(), c)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if got := result.Submission.Answers.Group("contacts"); len(got) != 0 {
		t.Fatalf("expected contacts to be removed, got %v", got)
	}
	if driver.inputPos != 1 {
		t.Fatalf("expected existing entry to be prompted once, got %d", driver.inputPos)
	}
}

func TestFill_RejectsOutOfRangeChoice(t *testing.T) {
	c, _ := wizard.NewController(fillSchema())
	driver := &stubDriver{inputs: []string{"Ada"}, selectIdx: []int{7}}

	_, err := newTestRenderer(t, driver).Fill(context.Background(), c)
	if !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("expected ErrInvalidChoice, got %v", err)
	}
}

func TestFill_UsesMarkdownRendererForPreview(t *testing.T) {
	c, _ := wizard.NewController(fillSchema())
	_ = c.HandleChange(answers.Top("name"), "Ada")
	_ = c.Next()
	_ = c.Next()

	driver := &stubDriver{selectIdx: []int{0}}
	var markdown string
	r, err := New(
		WithPromptDriver(driver),
		WithOutput(io.Discard),
		WithProfile(termenv.Ascii),
		WithMarkdownRenderer(func(md string) (string, error) {
			markdown = md
			return "rendered", nil
		}),
		WithOutputFormat(preview.FormatText),
	)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	result, err := r.Fill(context.Background(), c)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if !strings.Contains(markdown, "**Name**: Ada") {
		t.Fatalf("expected markdown preview, got %q", markdown)
	}
	if diff := cmp.Diff([]string{"rendered"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if string(result.Payload) != "Name: Ada\n" {
		t.Fatalf("unexpected text payload %q", result.Payload)
	}
	if r.PayloadContentType() != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected payload content type %q", r.PayloadContentType())
	}
}

func TestRender_PlainTextPage(t *testing.T) {
	c, _ := wizard.NewController(fillSchema())
	_ = c.HandleChange(answers.Top("name"), "Ada")
	_ = c.HandleChange(answers.Top("agree"), true)

	page := render.BuildPage(c, render.RenderOptions{
		Errors: map[string][]string{"plan": {"Plan looks odd"}},
	})
	out, err := newTestRenderer(t, &stubDriver{}).Render(context.Background(), page)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := strings.Join([]string{
		"Signup",
		"======",
		"Step 1 of 2: About",
		"",
		"Name *: Ada",
		"Plan: ",
		"  ! Plan looks odd",
		"[x] Agree",
		"",
		"[Next]",
		"",
	}, "\n")
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("page mismatch (-want +got):\n%s", diff)
	}
}

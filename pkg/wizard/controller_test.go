package wizard_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/answers"
	"github.com/goliatone/go-formwizard/pkg/schema"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

func twoStepSchema() *schema.Schema {
	return schema.New("Signup",
		schema.Step{Title: "Basics", Fields: []schema.Field{schema.Text("name", "name", true)}},
		schema.Step{Title: "Extras", Fields: []schema.Field{schema.Text("notes", "Notes", false)}},
	)
}

func contactsSchema() *schema.Schema {
	return schema.New("",
		schema.Step{Title: "People", Fields: []schema.Field{
			schema.Text("company", "Company", true),
			schema.Checkbox("agree", "Agree", true),
			schema.Group("contacts", "Contacts", true,
				schema.Text("email", "Email", true),
				schema.Text("city", "City", false),
			),
		}},
	)
}

func newController(t *testing.T, s *schema.Schema, opts ...wizard.Option) *wizard.Controller {
	t.Helper()
	c, err := wizard.NewController(s, opts...)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return c
}

func TestController_AdaSequence(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := newController(t, twoStepSchema(), wizard.WithClock(func() time.Time { return fixed }))

	err := c.Next()
	verr, ok := wizard.AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if diff := cmp.Diff([]string{"name is required"}, verr.Messages()); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
	if c.Step() != 0 {
		t.Fatalf("expected to stay on step 0, got %d", c.Step())
	}

	if err := c.HandleChange(answers.Top("name"), "Ada"); err != nil {
		t.Fatalf("handle change: %v", err)
	}
	if err := c.Next(); err != nil {
		t.Fatalf("next from step 0: %v", err)
	}
	if c.Step() != 1 || c.Phase() != wizard.PhaseEditing {
		t.Fatalf("expected editing step 1, got %d (%s)", c.Step(), c.Phase())
	}
	if err := c.Next(); err != nil {
		t.Fatalf("next from step 1: %v", err)
	}
	if c.Phase() != wizard.PhasePreview {
		t.Fatalf("expected preview, got %s", c.Phase())
	}
	if err := c.Next(); !errors.Is(err, wizard.ErrInPreview) {
		t.Fatalf("expected ErrInPreview, got %v", err)
	}

	sub, err := c.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	want := wizard.Submission{Title: "Signup", Answers: answers.Record{"name": "Ada"}, SubmittedAt: fixed}
	if diff := cmp.Diff(want, sub); diff != "" {
		t.Fatalf("submission mismatch (-want +got):\n%s", diff)
	}
	if c.Phase() != wizard.PhaseSubmitted {
		t.Fatalf("expected submitted phase, got %s", c.Phase())
	}
	if err := c.HandleChange(answers.Top("name"), "Grace"); !errors.Is(err, wizard.ErrSubmitted) {
		t.Fatalf("expected ErrSubmitted, got %v", err)
	}
	if _, err := c.Submit(); !errors.Is(err, wizard.ErrSubmitted) {
		t.Fatalf("expected second submit to fail, got %v", err)
	}
}

func TestController_SubmitOnlyFromPreview(t *testing.T) {
	c := newController(t, twoStepSchema())
	if _, err := c.Submit(); !errors.Is(err, wizard.ErrNotInPreview) {
		t.Fatalf("expected ErrNotInPreview, got %v", err)
	}
}

func TestController_RepeatableRequiredSubField(t *testing.T) {
	c := newController(t, contactsSchema())
	if err := c.HandleChange(answers.Top("company"), "Acme"); err != nil {
		t.Fatalf("company: %v", err)
	}
	if err := c.HandleChange(answers.Top("agree"), true); err != nil {
		t.Fatalf("agree: %v", err)
	}
	if err := c.AddGroup("contacts"); err != nil {
		t.Fatalf("add group: %v", err)
	}

	err := c.Next()
	verr, ok := wizard.AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	want := []wizard.Violation{{
		Path:    answers.Nested("contacts", 0, "email"),
		Label:   "Email",
		Message: "Email is required",
	}}
	if diff := cmp.Diff(want, verr.Violations); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestController_ZeroEntriesPassRequiredGroup(t *testing.T) {
	c := newController(t, contactsSchema())
	_ = c.HandleChange(answers.Top("company"), "Acme")
	_ = c.HandleChange(answers.Top("agree"), false)
	if got := c.ValidateStep(); len(got) != 0 {
		t.Fatalf("expected no violations, got %+v", got)
	}
}

func TestController_ValidateCollectsAllInOrder(t *testing.T) {
	c := newController(t, contactsSchema())
	_ = c.AddGroup("contacts")
	_ = c.AddGroup("contacts")
	_ = c.HandleSubChange("contacts", 1, "city", "Paris")
	_ = c.HandleChange(answers.Top("company"), "")

	got := c.ValidateStep()
	var messages []string
	for _, v := range got {
		messages = append(messages, v.Path.String()+": "+v.Message)
	}
	want := []string{
		"company: Company is required",
		"agree: Agree is required",
		"contacts.0.email: Email is required",
		"contacts.1.email: Email is required",
	}
	if diff := cmp.Diff(want, messages); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestController_TopChangeLeavesOtherKeys(t *testing.T) {
	c := newController(t, contactsSchema())
	_ = c.HandleChange(answers.Top("company"), "Acme")
	_ = c.AddGroup("contacts")
	_ = c.HandleSubChange("contacts", 0, "email", "a@example.com")
	before := c.Answers()

	if err := c.HandleChange(answers.Top("agree"), true); err != nil {
		t.Fatalf("handle change: %v", err)
	}
	before["agree"] = true
	if diff := cmp.Diff(before, c.Answers()); diff != "" {
		t.Fatalf("unexpected record (-want +got):\n%s", diff)
	}
}

func TestController_NestedChangeIsolatesIndex(t *testing.T) {
	c := newController(t, contactsSchema())
	for i, city := range []string{"Oslo", "Rome", "Lima"} {
		if err := c.HandleSubChange("contacts", i, "city", city); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
	path, err := answers.ParsePath("contacts.2.city")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := c.HandleChange(path, "NYC"); err != nil {
		t.Fatalf("nested change: %v", err)
	}
	want := []answers.SubRecord{{"city": "Oslo"}, {"city": "Rome"}, {"city": "NYC"}}
	if diff := cmp.Diff(want, c.Answers().Group("contacts")); diff != "" {
		t.Fatalf("group mismatch (-want +got):\n%s", diff)
	}
	if err := c.HandleSubChange("contacts", 5, "city", "Nope"); !errors.Is(err, wizard.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestController_NestedChangeReplacesSequence(t *testing.T) {
	c := newController(t, contactsSchema())
	_ = c.AddGroup("contacts")
	held := c.Snapshot().Answers.Group("contacts")
	_ = c.HandleSubChange("contacts", 0, "email", "x@example.com")
	if len(held[0]) != 0 {
		t.Fatalf("earlier snapshot was mutated: %v", held[0])
	}
}

func TestController_AddRemoveRoundTrip(t *testing.T) {
	c := newController(t, contactsSchema())
	if err := c.AddGroup("contacts"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.RemoveGroup("contacts", 0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := c.Answers().Group("contacts"); len(got) != 0 {
		t.Fatalf("expected empty sequence, got %v", got)
	}
	if err := c.RemoveGroup("contacts", 0); !errors.Is(err, wizard.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestController_RemoveShiftsEntries(t *testing.T) {
	c := newController(t, contactsSchema())
	for i, email := range []string{"a@x", "b@x", "c@x"} {
		_ = c.HandleSubChange("contacts", i, "email", email)
	}
	if err := c.RemoveGroup("contacts", 1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	want := []answers.SubRecord{{"email": "a@x"}, {"email": "c@x"}}
	if diff := cmp.Diff(want, c.Answers().Group("contacts")); diff != "" {
		t.Fatalf("group mismatch (-want +got):\n%s", diff)
	}
}

func TestController_BackRetainsAnswers(t *testing.T) {
	c := newController(t, twoStepSchema())
	if err := c.Back(); !errors.Is(err, wizard.ErrFirstStep) {
		t.Fatalf("expected ErrFirstStep, got %v", err)
	}
	_ = c.HandleChange(answers.Top("name"), "Ada")
	if err := c.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	_ = c.HandleChange(answers.Top("notes"), "hello")
	if err := c.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if err := c.Back(); err != nil {
		t.Fatalf("back from preview: %v", err)
	}
	if c.Step() != 1 {
		t.Fatalf("expected step 1 after back from preview, got %d", c.Step())
	}
	if err := c.Back(); err != nil {
		t.Fatalf("back: %v", err)
	}
	want := answers.Record{"name": "Ada", "notes": "hello"}
	if diff := cmp.Diff(want, c.Answers()); diff != "" {
		t.Fatalf("answers lost on back (-want +got):\n%s", diff)
	}
}

func TestController_RejectsUnknownAndMistyped(t *testing.T) {
	c := newController(t, contactsSchema())
	cases := []struct {
		name  string
		apply func() error
		want  error
	}{
		{"unknown top", func() error { return c.HandleChange(answers.Top("ghost"), "x") }, wizard.ErrUnknownField},
		{"unknown sub", func() error { return c.HandleSubChange("contacts", 0, "ghost", "x") }, wizard.ErrUnknownField},
		{"checkbox string", func() error { return c.HandleChange(answers.Top("agree"), "yes") }, wizard.ErrValueType},
		{"text bool", func() error { return c.HandleChange(answers.Top("company"), true) }, wizard.ErrValueType},
		{"group scalar", func() error { return c.HandleChange(answers.Top("contacts"), "x") }, wizard.ErrValueType},
		{"add to scalar", func() error { return c.AddGroup("company") }, wizard.ErrNotRepeatable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.apply(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if got := c.Answers(); len(got) != 0 {
		t.Fatalf("rejected changes must not mutate the record, got %v", got)
	}
}

func TestController_SnapshotRestore(t *testing.T) {
	c := newController(t, twoStepSchema())
	_ = c.HandleChange(answers.Top("name"), "Ada")
	_ = c.Next()
	snap := c.Snapshot()

	restored := newController(t, twoStepSchema(), wizard.WithState(snap))
	if restored.Step() != 1 {
		t.Fatalf("expected restored step 1, got %d", restored.Step())
	}
	if diff := cmp.Diff(snap.Answers, restored.Answers()); diff != "" {
		t.Fatalf("restored answers mismatch (-want +got):\n%s", diff)
	}

	if _, err := wizard.NewController(twoStepSchema(), wizard.WithState(wizard.State{Step: 7})); !errors.Is(err, wizard.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestController_HooksAndMessages(t *testing.T) {
	var (
		moves    [][2]int
		failures int
		submits  int
	)
	c := newController(t, twoStepSchema(),
		wizard.WithHooks(wizard.Hooks{
			OnStepChange:       func(from, to int) { moves = append(moves, [2]int{from, to}) },
			OnValidationFailed: func(*wizard.ValidationError) { failures++ },
			OnSubmit:           func(wizard.Submission) { submits++ },
		}),
		wizard.WithRequiredMessage(func(f schema.Field) string { return "falta " + f.Label() }),
	)

	verr, _ := wizard.AsValidationError(c.Next())
	if diff := cmp.Diff([]string{"falta name"}, verr.Messages()); diff != "" {
		t.Fatalf("translated messages mismatch (-want +got):\n%s", diff)
	}
	_ = c.HandleChange(answers.Top("name"), "Ada")
	_ = c.Next()
	_ = c.Next()
	_ = c.Back()
	_ = c.Next()
	_, _ = c.Submit()

	if diff := cmp.Diff([][2]int{{0, 1}, {1, 2}, {2, 1}, {1, 2}}, moves); diff != "" {
		t.Fatalf("step hooks mismatch (-want +got):\n%s", diff)
	}
	if failures != 1 || submits != 1 {
		t.Fatalf("unexpected hook counts failures=%d submits=%d", failures, submits)
	}
}

func TestNewController_RequiresSchema(t *testing.T) {
	if _, err := wizard.NewController(nil); !errors.Is(err, wizard.ErrNilSchema) {
		t.Fatalf("expected ErrNilSchema, got %v", err)
	}
	if _, err := wizard.NewController(schema.New("")); !errors.Is(err, wizard.ErrNoSteps) {
		t.Fatalf("expected ErrNoSteps, got %v", err)
	}
}

package render

import (
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formwizard/pkg/answers"
	"github.com/goliatone/go-formwizard/pkg/preview"
	"github.com/goliatone/go-formwizard/pkg/schema"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// Page is the renderer-agnostic view of one wizard screen. It is JSON
// friendly so template engines can consume it as plain maps.
type Page struct {
	Title       string          `json:"title"`
	Locale      string          `json:"locale,omitempty"`
	Action      string          `json:"action"`
	Phase       wizard.Phase    `json:"phase"`
	StepIndex   int             `json:"step_index"`
	StepNumber  int             `json:"step_number"`
	StepCount   int             `json:"step_count"`
	StepLabel   string          `json:"step_label"`
	Heading     string          `json:"heading"`
	Description string          `json:"description,omitempty"`
	Steps       []StepMarker    `json:"steps"`
	Fields      []FieldView     `json:"fields,omitempty"`
	Errors      []string        `json:"errors,omitempty"`
	Buttons     Buttons         `json:"buttons"`
	Preview     *PreviewView    `json:"preview,omitempty"`
	Submission  *SubmissionView `json:"submission,omitempty"`
	Hidden      []HiddenField   `json:"hidden,omitempty"`

	Theme *theme.RendererConfig `json:"-"`
}

// StepMarker is one entry of the progress indicator.
type StepMarker struct {
	Title   string `json:"title"`
	Number  int    `json:"number"`
	Current bool   `json:"current"`
	Done    bool   `json:"done"`
}

// FieldView is a field with its current value resolved.
type FieldView struct {
	Name        string       `json:"name"`
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	Type        string       `json:"type"`
	Known       bool         `json:"known"`
	Required    bool         `json:"required"`
	Help        string       `json:"help,omitempty"`
	Value       string       `json:"value"`
	Checked     bool         `json:"checked"`
	Placeholder string       `json:"placeholder,omitempty"`
	Options     []OptionView `json:"options,omitempty"`
	Errors      []string     `json:"errors,omitempty"`
	Group       *GroupView   `json:"group,omitempty"`

	Field schema.Field `json:"-"`
	Path  answers.Path `json:"-"`
}

// OptionView is one declared choice.
type OptionView struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// GroupView lists the entries of a repeatable field.
type GroupView struct {
	AddAction string      `json:"add_action"`
	AddLabel  string      `json:"add_label"`
	Entries   []EntryView `json:"entries"`
}

// EntryView is one sub-record of a repeatable field.
type EntryView struct {
	Index        int         `json:"index"`
	Number       int         `json:"number"`
	Title        string      `json:"title"`
	RemoveAction string      `json:"remove_action"`
	RemoveLabel  string      `json:"remove_label"`
	Fields       []FieldView `json:"fields"`
}

// Button is a posted action with its label.
type Button struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// Buttons holds the navigation controls. Back is nil on the first step and
// after submission.
type Buttons struct {
	Back    *Button `json:"back,omitempty"`
	Primary *Button `json:"primary,omitempty"`
}

// PreviewView is the read-only dump shown before submission.
type PreviewView struct {
	Title   string          `json:"title"`
	Text    string          `json:"text"`
	Entries []preview.Entry `json:"entries"`
}

// SubmissionView is the confirmation shown after Submit.
type SubmissionView struct {
	Title   string `json:"title"`
	Payload string `json:"payload"`
}

// BuildPage assembles the view for the controller's current position.
func BuildPage(c *wizard.Controller, opts RenderOptions) Page {
	l := NewLocalizer(opts)
	s := c.Schema()

	page := Page{
		Title:     s.Title(),
		Locale:    opts.Locale,
		Action:    opts.Action,
		Phase:     c.Phase(),
		StepIndex: c.Step(),
		StepCount: c.StepCount(),
		Errors:    normalizeMessages(opts.FormErrors),
		Hidden:    SortedHiddenFields(opts.Hidden),
		Theme:     opts.Theme,
	}
	if page.Action == "" {
		page.Action = "/"
	}
	page.Steps = stepMarkers(s, c.Step(), page.Phase)

	switch page.Phase {
	case wizard.PhaseSubmitted:
		page.Heading = l.Text(KeySubmitted, "Submission received")
		page.StepNumber = c.StepCount()
		if opts.Submission != nil {
			payload, err := preview.JSON(s, opts.Submission.Answers)
			if err != nil {
				page.Errors = MergeFormErrors(page.Errors, err.Error())
			}
			page.Submission = &SubmissionView{Title: page.Heading, Payload: string(payload)}
		}
		return page
	case wizard.PhasePreview:
		record := c.Answers()
		page.Heading = l.Text(KeyPreviewTitle, "Review Your Submission")
		page.StepNumber = c.StepCount()
		page.StepLabel = page.Heading
		page.Preview = &PreviewView{
			Title:   page.Heading,
			Text:    preview.Text(s, record),
			Entries: preview.Entries(s, record),
		}
		page.Buttons = Buttons{
			Back:    &Button{Label: l.Text(KeyBack, "Back"), Action: string(ActionBack)},
			Primary: &Button{Label: l.Text(KeySubmit, "Submit"), Action: string(ActionSubmit)},
		}
		return page
	}

	step, _ := c.CurrentStep()
	page.StepNumber = c.Step() + 1
	page.Heading = step.Title
	page.Description = step.Description
	page.StepLabel = l.Text(KeyStepOf, "Step %d of %d", page.StepNumber, page.StepCount)

	record := c.Answers()
	for _, field := range step.Fields {
		page.Fields = append(page.Fields, buildField(field, answers.Top(field.Name()), record, opts.Errors, l))
	}

	if c.Step() > 0 {
		page.Buttons.Back = &Button{Label: l.Text(KeyBack, "Back"), Action: string(ActionBack)}
	}
	primary := Button{Label: l.Text(KeyNext, "Next"), Action: string(ActionNext)}
	if c.Step() == c.StepCount()-1 {
		primary.Label = l.Text(KeyReview, "Review")
	}
	page.Buttons.Primary = &primary
	return page
}

func stepMarkers(s *schema.Schema, current int, phase wizard.Phase) []StepMarker {
	steps := s.Steps()
	out := make([]StepMarker, 0, len(steps))
	for i, step := range steps {
		out = append(out, StepMarker{
			Title:   step.Title,
			Number:  i + 1,
			Current: phase == wizard.PhaseEditing && i == current,
			Done:    i < current || phase != wizard.PhaseEditing,
		})
	}
	return out
}

func buildField(field schema.Field, path answers.Path, record answers.Record, errs map[string][]string, l Localizer) FieldView {
	view := FieldView{
		Name:     path.String(),
		ID:       fieldID(path),
		Label:    field.Label(),
		Type:     string(field.Type()),
		Known:    field.Type().Known(),
		Required: field.IsRequired(),
		Help:     field.Help(),
		Errors:   errs[path.String()],
		Field:    field,
		Path:     path,
	}

	value, _ := lookup(record, path)
	switch f := field.(type) {
	case schema.Input:
		if f.Kind == schema.FieldTypeCheckbox {
			checked, _ := value.(bool)
			view.Checked = checked
			view.Value = "true"
			break
		}
		view.Value = stringValue(value)
	case schema.Choice:
		current := stringValue(value)
		view.Value = current
		if f.Kind == schema.FieldTypeSelect {
			view.Placeholder = l.Text(KeySelect, "Select %s", field.Label())
		}
		for _, option := range f.Options {
			view.Options = append(view.Options, OptionView{Value: option, Selected: option == current})
		}
	case schema.Repeatable:
		group := &GroupView{
			AddAction: AddAction(f.Name()).String(),
			AddLabel:  l.Text(KeyAdd, "Add %s", field.Label()),
		}
		for i := range record.Group(f.Name()) {
			entry := EntryView{
				Index:        i,
				Number:       i + 1,
				Title:        l.Text(KeyEntry, "%s #%d", field.Label(), i+1),
				RemoveAction: RemoveAction(f.Name(), i).String(),
				RemoveLabel:  l.Text(KeyRemove, "Remove"),
			}
			for _, sub := range f.Fields {
				entry.Fields = append(entry.Fields, buildField(sub, answers.Nested(f.Name(), i, sub.Name()), record, errs, l))
			}
			group.Entries = append(group.Entries, entry)
		}
		view.Group = group
	}
	return view
}

func lookup(record answers.Record, path answers.Path) (any, bool) {
	if !path.IsNested() {
		return record.Get(path.Name)
	}
	seq := record.Group(path.Group)
	if path.Index < 0 || path.Index >= len(seq) {
		return nil, false
	}
	value, ok := seq[path.Index][path.Name]
	return value, ok
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

func fieldID(path answers.Path) string {
	return "field-" + strings.ReplaceAll(path.String(), ".", "-")
}

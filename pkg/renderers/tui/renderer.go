package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/goliatone/go-formwizard/pkg/answers"
	"github.com/goliatone/go-formwizard/pkg/preview"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/schema"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// Name identifies the renderer in a render.Registry.
const Name = "tui"

// noneOption clears an optional choice.
const noneOption = "(none)"

// Renderer drives a wizard.Controller through terminal prompts. As a
// render.Renderer it also prints a static, plain-text view of a page.
type Renderer struct {
	driver   PromptDriver
	format   preview.Format
	out      io.Writer
	profile  *termenv.Profile
	markdown MarkdownRenderer
	theme    Theme
}

// Result is what a completed Fill session produced.
type Result struct {
	Submission wizard.Submission
	// Payload is the submission serialized in the configured output format.
	Payload []byte
}

// New constructs a TUI renderer with defaults (survey driver, JSON output,
// colour profile detected from the environment).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		format: preview.FormatJSON,
		out:    os.Stdout,
		theme:  DefaultTheme,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	if r.profile == nil {
		profile := termenv.NewOutput(r.out).EnvColorProfile()
		r.profile = &profile
	}
	if r.markdown == nil && *r.profile != termenv.Ascii {
		term, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			return nil, fmt.Errorf("tui: markdown renderer: %w", err)
		}
		r.markdown = term.Render
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the media type of Render output.
func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// PayloadContentType reports the media type of Result.Payload.
func (r *Renderer) PayloadContentType() string {
	switch r.format {
	case preview.FormatJSON:
		return "application/json"
	case preview.FormatYAML:
		return "application/yaml"
	case preview.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Render prints a plain-text view of page.
func (r *Renderer) Render(ctx context.Context, page render.Page) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", page.Title)
	fmt.Fprintf(&b, "%s\n", strings.Repeat("=", len([]rune(page.Title))))
	if page.StepLabel != "" && page.Phase == wizard.PhaseEditing {
		fmt.Fprintf(&b, "%s: %s\n", page.StepLabel, page.Heading)
	} else {
		fmt.Fprintf(&b, "%s\n", page.Heading)
	}
	if page.Description != "" {
		fmt.Fprintf(&b, "%s\n", page.Description)
	}
	for _, message := range page.Errors {
		fmt.Fprintf(&b, "! %s\n", message)
	}
	if len(page.Fields) > 0 {
		b.WriteByte('\n')
		writeFields(&b, page.Fields, "")
	}
	if page.Preview != nil {
		fmt.Fprintf(&b, "\n%s", page.Preview.Text)
	}
	if page.Submission != nil {
		fmt.Fprintf(&b, "\n%s\n", page.Submission.Payload)
	}

	var buttons []string
	if page.Buttons.Back != nil {
		buttons = append(buttons, "["+page.Buttons.Back.Label+"]")
	}
	if page.Buttons.Primary != nil {
		buttons = append(buttons, "["+page.Buttons.Primary.Label+"]")
	}
	if len(buttons) > 0 {
		fmt.Fprintf(&b, "\n%s\n", strings.Join(buttons, " "))
	}
	return []byte(b.String()), nil
}

func writeFields(b *strings.Builder, fields []render.FieldView, indent string) {
	for _, field := range fields {
		if !field.Known {
			continue
		}
		marker := ""
		if field.Required {
			marker = " *"
		}
		switch {
		case field.Group != nil:
			fmt.Fprintf(b, "%s%s%s:\n", indent, field.Label, marker)
			if len(field.Group.Entries) == 0 {
				fmt.Fprintf(b, "%s  (none)\n", indent)
			}
			for _, entry := range field.Group.Entries {
				fmt.Fprintf(b, "%s  %s\n", indent, entry.Title)
				writeFields(b, entry.Fields, indent+"    ")
			}
		case field.Type == string(schema.FieldTypeCheckbox):
			box := "[ ]"
			if field.Checked {
				box = "[x]"
			}
			fmt.Fprintf(b, "%s%s %s%s\n", indent, box, field.Label, marker)
		default:
			fmt.Fprintf(b, "%s%s%s: %s\n", indent, field.Label, marker, field.Value)
		}
		for _, message := range field.Errors {
			fmt.Fprintf(b, "%s  ! %s\n", indent, message)
		}
	}
}

// Fill prompts through every step of c until the user submits. Validation
// failures print each message and prompt the step again.
func (r *Renderer) Fill(ctx context.Context, c *wizard.Controller) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("tui: context is required")
	}
	if c == nil {
		return Result{}, errors.New("tui: controller is required")
	}
	if r.driver == nil {
		return Result{}, errors.New("tui: prompt driver is nil")
	}

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		switch c.Phase() {
		case wizard.PhaseSubmitted:
			return Result{}, wizard.ErrSubmitted
		case wizard.PhasePreview:
			sub, done, err := r.review(ctx, c)
			if err != nil {
				return Result{}, err
			}
			if !done {
				continue
			}
			payload, err := preview.Render(c.Schema(), sub.Answers, r.format)
			if err != nil {
				return Result{}, fmt.Errorf("tui: serialize submission: %w", err)
			}
			return Result{Submission: sub, Payload: payload}, nil
		default:
			if err := r.fillStep(ctx, c); err != nil {
				return Result{}, err
			}
		}
	}
}

func (r *Renderer) fillStep(ctx context.Context, c *wizard.Controller) error {
	step, ok := c.CurrentStep()
	if !ok {
		return wizard.ErrInPreview
	}
	heading := fmt.Sprintf("Step %d of %d: %s", c.Step()+1, c.StepCount(), step.Title)
	if err := r.driver.Info(ctx, r.accent(heading)); err != nil {
		return err
	}
	if step.Description != "" {
		if err := r.driver.Info(ctx, step.Description); err != nil {
			return err
		}
	}

	for _, field := range step.Fields {
		if err := r.promptField(ctx, c, field); err != nil {
			return err
		}
	}

	last := c.Step() == c.StepCount()-1
	options := []string{"Next"}
	if last {
		options[0] = "Review"
	}
	if c.Step() > 0 {
		options = append(options, "Back")
	}
	choice, err := r.choose(ctx, SelectConfig{Message: "Continue", Options: options})
	if err != nil {
		return err
	}
	if options[choice] == "Back" {
		return c.Back()
	}

	err = c.Next()
	var verr *wizard.ValidationError
	if errors.As(err, &verr) {
		for _, message := range verr.Messages() {
			if infoErr := r.driver.Info(ctx, r.failure(message)); infoErr != nil {
				return infoErr
			}
		}
		return nil
	}
	return err
}

func (r *Renderer) review(ctx context.Context, c *wizard.Controller) (wizard.Submission, bool, error) {
	s := c.Schema()
	record := c.Answers()

	dump := preview.Text(s, record)
	if r.markdown != nil {
		md, err := preview.Render(s, record, preview.FormatMarkdown)
		if err == nil {
			if styled, renderErr := r.markdown(string(md)); renderErr == nil {
				dump = styled
			}
		}
	} else {
		dump = r.accent("Review Your Submission") + "\n" + dump
	}
	if err := r.driver.Info(ctx, dump); err != nil {
		return wizard.Submission{}, false, err
	}

	options := []string{"Submit", "Back"}
	choice, err := r.choose(ctx, SelectConfig{Message: "Ready to submit?", Options: options})
	if err != nil {
		return wizard.Submission{}, false, err
	}
	if options[choice] == "Back" {
		return wizard.Submission{}, false, c.Back()
	}
	sub, err := c.Submit()
	if err != nil {
		return wizard.Submission{}, false, err
	}
	return sub, true, nil
}

func (r *Renderer) promptField(ctx context.Context, c *wizard.Controller, field schema.Field) error {
	if repeatable, ok := field.(schema.Repeatable); ok {
		return r.promptGroup(ctx, c, repeatable)
	}
	current, _ := c.Value(answers.Top(field.Name()))
	value, skip, err := r.promptValue(ctx, field, current, "")
	if err != nil || skip {
		return err
	}
	return c.HandleChange(answers.Top(field.Name()), value)
}

// promptGroup edits existing entries, then loops over add and remove until
// the user continues.
func (r *Renderer) promptGroup(ctx context.Context, c *wizard.Controller, field schema.Repeatable) error {
	for i := range c.Answers().Group(field.Name()) {
		if err := r.promptEntry(ctx, c, field, i); err != nil {
			return err
		}
	}

	for {
		entries := c.Answers().Group(field.Name())
		options := []string{fmt.Sprintf("Add %s", field.Label())}
		for i := range entries {
			options = append(options, fmt.Sprintf("Remove %s #%d", field.Label(), i+1))
		}
		options = append(options, "Continue")

		choice, err := r.choose(ctx, SelectConfig{
			Message:      fmt.Sprintf("%s (%d)", field.Label(), len(entries)),
			Options:      options,
			DefaultIndex: len(options) - 1,
			Help:         field.Help(),
		})
		if err != nil {
			return err
		}

		switch {
		case choice == 0:
			if err := c.AddGroup(field.Name()); err != nil {
				return err
			}
			if err := r.promptEntry(ctx, c, field, len(entries)); err != nil {
				return err
			}
		case choice == len(options)-1:
			return nil
		default:
			if err := c.RemoveGroup(field.Name(), choice-1); err != nil {
				return err
			}
		}
	}
}

func (r *Renderer) promptEntry(ctx context.Context, c *wizard.Controller, field schema.Repeatable, index int) error {
	prefix := fmt.Sprintf("%s #%d ", field.Label(), index+1)
	for _, sub := range field.Fields {
		current, _ := c.Value(answers.Nested(field.Name(), index, sub.Name()))
		value, skip, err := r.promptValue(ctx, sub, current, prefix)
		if err != nil {
			return err
		}
		if skip {
			continue
		}
		if err := c.HandleSubChange(field.Name(), index, sub.Name(), value); err != nil {
			return err
		}
	}
	return nil
}

// promptValue asks for one scalar value. Fields without a prompt (unknown
// types, nested repeatables) report skip.
func (r *Renderer) promptValue(ctx context.Context, field schema.Field, current any, prefix string) (any, bool, error) {
	message := prefix + field.Label()
	if field.IsRequired() {
		message += " *"
	}

	switch f := field.(type) {
	case schema.Input:
		if f.Kind == schema.FieldTypeCheckbox {
			checked, _ := current.(bool)
			value, err := r.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: checked, Help: f.Help()})
			return value, false, err
		}
		def, _ := current.(string)
		value, err := r.driver.Input(ctx, InputConfig{Message: message, Default: def, Help: f.Help()})
		return value, false, err
	case schema.Choice:
		def, _ := current.(string)
		values := append([]string(nil), f.Options...)
		display := append([]string(nil), f.Options...)
		if !f.IsRequired() {
			values = append([]string{""}, values...)
			display = append([]string{noneOption}, display...)
		}
		choice, err := r.choose(ctx, SelectConfig{
			Message:      message,
			Options:      display,
			DefaultIndex: indexOf(values, def),
			Help:         f.Help(),
		})
		if err != nil {
			return nil, false, err
		}
		return values[choice], false, nil
	default:
		return nil, true, nil
	}
}

func (r *Renderer) choose(ctx context.Context, cfg SelectConfig) (int, error) {
	choice, err := r.driver.Select(ctx, cfg)
	if err != nil {
		return 0, err
	}
	if choice < 0 || choice >= len(cfg.Options) {
		return 0, fmt.Errorf("%w: %d of %d", ErrInvalidChoice, choice, len(cfg.Options))
	}
	return choice, nil
}

func (r *Renderer) accent(msg string) string {
	return r.style(r.theme.InfoPrefix, msg, r.theme.Accent)
}

func (r *Renderer) failure(msg string) string {
	return r.style(r.theme.ErrorPrefix, msg, r.theme.ErrorColor)
}

func (r *Renderer) style(prefix, msg, color string) string {
	if prefix != "" {
		msg = prefix + " " + msg
	}
	if r.profile == nil || *r.profile == termenv.Ascii || color == "" {
		return msg
	}
	return r.profile.String(msg).Foreground(r.profile.Color(color)).String()
}

package tui

import (
	"io"

	"github.com/muesli/termenv"

	"github.com/goliatone/go-formwizard/pkg/preview"
)

// Theme captures the prefixes and colours used when printing messages.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
	Accent      string
	ErrorColor  string
}

// DefaultTheme is applied unless WithTheme overrides it.
var DefaultTheme = Theme{
	InfoPrefix:  "›",
	ErrorPrefix: "✗",
	Accent:      "#818cf8",
	ErrorColor:  "#f87171",
}

// MarkdownRenderer turns markdown into terminal output.
type MarkdownRenderer func(markdown string) (string, error)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the payload serialization format.
func WithOutputFormat(format preview.Format) Option {
	return func(r *Renderer) {
		if format != "" {
			r.format = format
		}
	}
}

// WithOutput sets where headings, previews and messages are written.
func WithOutput(w io.Writer) Option {
	return func(r *Renderer) {
		if w != nil {
			r.out = w
		}
	}
}

// WithProfile forces a colour profile. termenv.Ascii disables styling and
// markdown rendering of the preview.
func WithProfile(profile termenv.Profile) Option {
	return func(r *Renderer) {
		r.profile = &profile
	}
}

// WithMarkdownRenderer replaces the glamour renderer used for previews.
func WithMarkdownRenderer(fn MarkdownRenderer) Option {
	return func(r *Renderer) {
		r.markdown = fn
	}
}

// WithTheme applies message prefixes and colours.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

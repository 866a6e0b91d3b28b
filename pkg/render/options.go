package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// RenderOptions carry per-request data used when building a Page.
type RenderOptions struct {
	// Action is the URL the form posts to.
	Action     string
	Locale     string
	Translator Translator
	OnMissing  MissingTranslationHandler
	// Errors holds field-level messages keyed by qualified name
	// ("contacts.0.email").
	Errors map[string][]string
	// FormErrors are shown above the step.
	FormErrors []string
	Hidden     map[string]string
	Theme      *theme.RendererConfig
	// Submission switches the page to the confirmation view.
	Submission *wizard.Submission
}

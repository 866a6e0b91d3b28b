package render

import (
	"errors"
	"fmt"
	"strings"
)

// Translator resolves message keys for a locale. Implementations receive the
// raw args passed by the caller (labels for the built-in wizard keys).
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides the text used when a key cannot be
// translated. args carries a map with the "default" text as its last element.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// ErrMissingTranslator is reported to MissingTranslationHandler when no
// translator is configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Message keys used by the wizard chrome.
const (
	KeyBack          = "wizard.back"
	KeyNext          = "wizard.next"
	KeyReview        = "wizard.review"
	KeySubmit        = "wizard.submit"
	KeyAdd           = "wizard.add"
	KeyRemove        = "wizard.remove"
	KeySelect        = "wizard.select"
	KeyRequired      = "wizard.required"
	KeyPreviewTitle  = "wizard.preview.title"
	KeySubmitted     = "wizard.submitted.title"
	KeyStepOf        = "wizard.step_of"
	KeySteps         = "wizard.steps"
	KeyEntry         = "wizard.entry"
	KeyInvalidAction = "wizard.invalid_action"
)

// Localizer binds a translator to a locale.
type Localizer struct {
	Locale     string
	Translator Translator
	OnMissing  MissingTranslationHandler
}

// NewLocalizer builds a Localizer from render options.
func NewLocalizer(opts RenderOptions) Localizer {
	return Localizer{Locale: opts.Locale, Translator: opts.Translator, OnMissing: opts.OnMissing}
}

// Text translates key, falling back to fallback (a fmt format applied to
// args) when the translator is missing or has no entry.
func (l Localizer) Text(key, fallback string, args ...any) string {
	if len(args) > 0 {
		fallback = fmt.Sprintf(fallback, args...)
	}
	return translate(l.Locale, key, fallback, l.Translator, l.OnMissing, args...)
}

// Required formats the missing field message for label.
func (l Localizer) Required(label string) string {
	return l.Text(KeyRequired, "%s is required", label)
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler, args ...any) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, append(args, map[string]any{"default": fallback}), ErrMissingTranslator)
		}
		return fallback
	}

	result, err := t.Translate(locale, key, args...)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}

	if onMissing != nil {
		return onMissing(locale, key, append(args, map[string]any{"default": fallback}), err)
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

func missingTranslationDefault(_ string, key string, args []any, _ error) string {
	for i := len(args) - 1; i >= 0; i-- {
		if m, ok := args[i].(map[string]any); ok {
			if fallback, ok := m["default"].(string); ok && strings.TrimSpace(fallback) != "" {
				return fallback
			}
		}
	}
	return key
}

// MapTranslator is a static catalogue keyed by locale then message key.
// Values are fmt formats applied to the args.
type MapTranslator map[string]map[string]string

// Translate implements Translator.
func (m MapTranslator) Translate(locale, key string, args ...any) (string, error) {
	for _, candidate := range localeChain(locale) {
		if catalog, ok := m[candidate]; ok {
			if msg, ok := catalog[key]; ok {
				if len(args) > 0 && strings.Contains(msg, "%") {
					return fmt.Sprintf(msg, args...), nil
				}
				return msg, nil
			}
		}
	}
	return "", fmt.Errorf("render: no translation for %q in %q", key, locale)
}

func localeChain(locale string) []string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return []string{""}
	}
	chain := []string{locale}
	if idx := strings.IndexAny(locale, "-_"); idx > 0 {
		chain = append(chain, locale[:idx])
	}
	return append(chain, "")
}

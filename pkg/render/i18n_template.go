package render

import (
	"fmt"
	"strings"
)

// TemplateI18nConfig configures template-level translation helpers.
type TemplateI18nConfig struct {
	// LocaleKey selects the key holding the locale when templates pass the
	// page map instead of a locale string. Defaults to "locale".
	LocaleKey string
	// FuncName customises the helper name (defaults to "translate").
	FuncName  string
	OnMissing MissingTranslationHandler
	// Fallbacks holds the text used per key when no translation exists.
	Fallbacks map[string]string
}

// TemplateI18nFuncs returns helpers for the template engine:
//
//	{{ translate(page, "wizard.next") }}
//	{{ current_locale(page) }}
//
// The first argument is either a locale string or a map carrying the locale
// under cfg.LocaleKey.
func TemplateI18nFuncs(t Translator, cfg TemplateI18nConfig) map[string]any {
	localeKey := strings.TrimSpace(cfg.LocaleKey)
	if localeKey == "" {
		localeKey = "locale"
	}
	name := strings.TrimSpace(cfg.FuncName)
	if name == "" {
		name = "translate"
	}
	onMissing := cfg.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}

	return map[string]any{
		name: func(localeSrc any, key string, params ...any) string {
			key = strings.TrimSpace(key)
			if key == "" {
				return ""
			}
			locale := resolveLocale(localeSrc, localeKey)
			return translate(locale, key, cfg.Fallbacks[key], t, onMissing, params...)
		},
		"current_locale": func(localeSrc any) string {
			return resolveLocale(localeSrc, localeKey)
		},
	}
}

func resolveLocale(src any, key string) string {
	switch data := src.(type) {
	case nil:
		return ""
	case string:
		return data
	case Page:
		return data.Locale
	case *Page:
		if data == nil {
			return ""
		}
		return data.Locale
	case map[string]string:
		return data[key]
	case map[string]any:
		if v, ok := data[key]; ok && v != nil {
			return strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return ""
}

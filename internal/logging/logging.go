// Package logging builds the zerolog loggers used by the server and CLI and
// adapts them to wizard lifecycle hooks.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// Output formats accepted by New.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New returns a logger writing to w at level. format is "console" for human
// output or "json"; blank values default to info and console.
func New(level, format string, w io.Writer) (zerolog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	lvl := zerolog.InfoLevel
	if strings.TrimSpace(level) != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("logging: %w", err)
		}
		lvl = parsed
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatConsole:
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	case FormatJSON:
	default:
		return zerolog.Nop(), fmt.Errorf("logging: unknown format %q", format)
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// Hooks logs step transitions, validation failures and submissions.
func Hooks(logger zerolog.Logger) wizard.Hooks {
	return wizard.Hooks{
		OnStepChange: func(from, to int) {
			logger.Debug().Int("from", from).Int("to", to).Msg("step changed")
		},
		OnValidationFailed: func(verr *wizard.ValidationError) {
			logger.Info().
				Int("step", verr.Step).
				Int("violations", len(verr.Violations)).
				Msg("step validation failed")
		},
		OnSubmit: func(sub wizard.Submission) {
			logger.Info().
				Str("title", sub.Title).
				Strs("fields", sub.Answers.Keys()).
				Time("submitted_at", sub.SubmittedAt).
				Msg("submission received")
		},
	}
}

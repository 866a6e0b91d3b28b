package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formwizard/pkg/answers"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

func TestNew_JSONLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("warn", FormatJSON, &buf)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Str("k", "v").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "v", entry["k"])
}

func TestNew_RejectsUnknownSettings(t *testing.T) {
	_, err := New("loud", FormatJSON, nil)
	assert.Error(t, err)

	_, err = New("info", "xml", nil)
	assert.Error(t, err)
}

func TestHooks_LogSubmissionAndFailures(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("debug", FormatJSON, &buf)
	require.NoError(t, err)

	hooks := Hooks(logger)
	hooks.OnStepChange(0, 1)
	hooks.OnValidationFailed(&wizard.ValidationError{Step: 1, Violations: make([]wizard.Violation, 2)})
	hooks.OnSubmit(wizard.Submission{
		Title:       "Signup",
		Answers:     answers.Record{"name": "Ada"},
		SubmittedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	})

	out := buf.String()
	assert.Contains(t, out, `"message":"step changed"`)
	assert.Contains(t, out, `"violations":2`)
	assert.Contains(t, out, `"fields":["name"]`)
	assert.Contains(t, out, `"message":"submission received"`)
}

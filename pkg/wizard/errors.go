package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/answers"
)

var (
	// ErrNilSchema is returned when a controller is built without a schema.
	ErrNilSchema = errors.New("wizard: schema is required")
	// ErrNoSteps is returned when the schema declares no steps.
	ErrNoSteps = errors.New("wizard: schema has no steps")
	// ErrFirstStep is returned by Back on the first step.
	ErrFirstStep = errors.New("wizard: already on the first step")
	// ErrInPreview is returned by Next once the preview is reached.
	ErrInPreview = errors.New("wizard: already in preview")
	// ErrNotInPreview is returned by Submit outside the preview.
	ErrNotInPreview = errors.New("wizard: submit is only available from the preview")
	// ErrSubmitted is returned by every operation after Submit.
	ErrSubmitted = errors.New("wizard: form already submitted")
	// ErrUnknownField is returned for names the schema does not declare.
	ErrUnknownField = errors.New("wizard: unknown field")
	// ErrNotRepeatable is returned when a group operation targets a field
	// that is not repeatable.
	ErrNotRepeatable = errors.New("wizard: field is not repeatable")
	// ErrValueType is returned when a value does not fit its field kind.
	ErrValueType = errors.New("wizard: value type does not match field")
	// ErrIndexOutOfRange is returned for group indices outside the sequence.
	ErrIndexOutOfRange = errors.New("wizard: group index out of range")
	// ErrInvalidState is returned by Restore for snapshots that do not fit
	// the schema.
	ErrInvalidState = errors.New("wizard: invalid state")
)

// Violation is one MissingRequiredField occurrence.
type Violation struct {
	Path    answers.Path
	Label   string
	Message string
}

// ValidationError carries every violation found on a step, in declared
// order.
type ValidationError struct {
	Step       int
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Violations) == 0 {
		return "wizard: validation failed"
	}
	return fmt.Sprintf("wizard: step %d: %s", e.Step, strings.Join(e.Messages(), "; "))
}

// Messages returns the user-facing messages in order.
func (e *ValidationError) Messages() []string {
	if e == nil {
		return nil
	}
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.Message)
	}
	return out
}

// AsValidationError unwraps err into a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var target *ValidationError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

package wizard

import (
	"time"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

// Option customises a Controller.
type Option func(*Controller)

// Hooks observe controller transitions. Every callback is optional and runs
// synchronously after the state change it reports.
type Hooks struct {
	OnStepChange       func(from, to int)
	OnValidationFailed func(err *ValidationError)
	OnSubmit           func(sub Submission)
}

// RequiredMessageFunc formats the message for a missing required field.
type RequiredMessageFunc func(field schema.Field) string

// WithHooks installs lifecycle hooks.
func WithHooks(h Hooks) Option {
	return func(c *Controller) {
		c.hooks = h
	}
}

// WithState seeds the controller from a snapshot. Invalid snapshots are
// reported by NewController.
func WithState(state State) Option {
	return func(c *Controller) {
		c.seed = &state
	}
}

// WithRequiredMessage overrides the "<label> is required" formatter.
func WithRequiredMessage(fn RequiredMessageFunc) Option {
	return func(c *Controller) {
		if fn != nil {
			c.requiredMessage = fn
		}
	}
}

// WithClock overrides the time source used to stamp submissions.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// DefaultRequiredMessage is the message used when no formatter is set.
func DefaultRequiredMessage(field schema.Field) string {
	return field.Label() + " is required"
}

package wizard

import (
	"fmt"
	"time"

	"github.com/goliatone/go-formwizard/pkg/answers"
	"github.com/goliatone/go-formwizard/pkg/schema"
)

// Phase is the coarse position of the controller in its state machine.
type Phase string

const (
	PhaseEditing   Phase = "editing"
	PhasePreview   Phase = "preview"
	PhaseSubmitted Phase = "submitted"
)

// State is the serialisable form state. Step equal to the schema's step count
// is the preview.
type State struct {
	Step      int            `json:"step"`
	Answers   answers.Record `json:"answers"`
	Submitted bool           `json:"submitted,omitempty"`
}

// Submission is the payload emitted by Submit.
type Submission struct {
	Title       string         `json:"title,omitempty"`
	Answers     answers.Record `json:"answers"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

// Controller owns the answer record and the current step. It is not safe for
// concurrent use; callers serialise access per session.
type Controller struct {
	schema          *schema.Schema
	state           State
	hooks           Hooks
	requiredMessage RequiredMessageFunc
	now             func() time.Time
	seed            *State
}

// NewController builds a controller positioned on the first step with an empty
// record, unless WithState supplies a snapshot.
func NewController(s *schema.Schema, opts ...Option) (*Controller, error) {
	if s == nil {
		return nil, ErrNilSchema
	}
	if s.StepCount() == 0 {
		return nil, ErrNoSteps
	}

	c := &Controller{
		schema:          s,
		state:           State{Answers: answers.Record{}},
		requiredMessage: DefaultRequiredMessage,
		now:             time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.seed != nil {
		seed := *c.seed
		c.seed = nil
		if err := c.Restore(seed); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Schema returns the schema driving the controller.
func (c *Controller) Schema() *schema.Schema {
	return c.schema
}

// Step returns the current step index.
func (c *Controller) Step() int {
	return c.state.Step
}

// StepCount returns the number of editable steps.
func (c *Controller) StepCount() int {
	return c.schema.StepCount()
}

// CurrentStep returns the step being edited; false in preview.
func (c *Controller) CurrentStep() (schema.Step, bool) {
	return c.schema.Step(c.state.Step)
}

// Phase reports editing, preview or submitted.
func (c *Controller) Phase() Phase {
	switch {
	case c.state.Submitted:
		return PhaseSubmitted
	case c.state.Step >= c.schema.StepCount():
		return PhasePreview
	default:
		return PhaseEditing
	}
}

// Answers returns a deep copy of the record.
func (c *Controller) Answers() answers.Record {
	return c.state.Answers.Clone()
}

// Value returns the value currently stored at path.
func (c *Controller) Value(path answers.Path) (any, bool) {
	if !path.IsNested() {
		return c.state.Answers.Get(path.Name)
	}
	seq := c.state.Answers.Group(path.Group)
	if path.Index < 0 || path.Index >= len(seq) {
		return nil, false
	}
	value, ok := seq[path.Index][path.Name]
	return value, ok
}

// Snapshot returns a copy of the state for persistence between requests.
func (c *Controller) Snapshot() State {
	return State{
		Step:      c.state.Step,
		Answers:   c.state.Answers.Clone(),
		Submitted: c.state.Submitted,
	}
}

// Restore replaces the state with a snapshot.
func (c *Controller) Restore(state State) error {
	if state.Step < 0 || state.Step > c.schema.StepCount() {
		return fmt.Errorf("%w: step %d outside [0, %d]", ErrInvalidState, state.Step, c.schema.StepCount())
	}
	if state.Answers == nil {
		state.Answers = answers.Record{}
	}
	c.state = State{
		Step:      state.Step,
		Answers:   state.Answers.Clone(),
		Submitted: state.Submitted,
	}
	return nil
}

// HandleChange writes value at path. Top paths store the value directly;
// nested paths merge into the addressed sub-record.
func (c *Controller) HandleChange(path answers.Path, value any) error {
	if c.state.Submitted {
		return ErrSubmitted
	}
	if path.IsNested() {
		return c.HandleSubChange(path.Group, path.Index, path.Name, value)
	}

	field, ok := c.schema.Lookup(path.Name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, path.Name)
	}
	if group, ok := field.(schema.Repeatable); ok {
		seq, err := c.checkSequence(group, value)
		if err != nil {
			return err
		}
		c.state.Answers[path.Name] = seq
		return nil
	}
	if err := checkScalar(field, value); err != nil {
		return err
	}
	c.state.Answers[path.Name] = value
	return nil
}

// HandleSubChange merges {key: value} into entry index of the named group.
// Index equal to the sequence length appends a new entry.
func (c *Controller) HandleSubChange(name string, index int, key string, value any) error {
	if c.state.Submitted {
		return ErrSubmitted
	}
	group, err := c.repeatable(name)
	if err != nil {
		return err
	}
	sub, ok := group.SubField(key)
	if !ok {
		return fmt.Errorf("%w: %q in group %q", ErrUnknownField, key, name)
	}
	if err := checkScalar(sub, value); err != nil {
		return err
	}

	current := c.state.Answers.Group(name)
	if index < 0 || index > len(current) {
		return fmt.Errorf("%w: %s[%d] with %d entries", ErrIndexOutOfRange, name, index, len(current))
	}
	next := copySequence(current, 1)
	if index == len(next) {
		next = append(next, answers.SubRecord{})
	}
	next[index] = next[index].Clone()
	next[index][key] = value
	c.state.Answers[name] = next
	return nil
}

// AddGroup appends an empty sub-record to the named group.
func (c *Controller) AddGroup(name string) error {
	if c.state.Submitted {
		return ErrSubmitted
	}
	if _, err := c.repeatable(name); err != nil {
		return err
	}
	next := copySequence(c.state.Answers.Group(name), 1)
	next = append(next, answers.SubRecord{})
	c.state.Answers[name] = next
	return nil
}

// RemoveGroup drops entry index from the named group, shifting later entries
// down.
func (c *Controller) RemoveGroup(name string, index int) error {
	if c.state.Submitted {
		return ErrSubmitted
	}
	if _, err := c.repeatable(name); err != nil {
		return err
	}
	current := c.state.Answers.Group(name)
	if index < 0 || index >= len(current) {
		return fmt.Errorf("%w: %s[%d] with %d entries", ErrIndexOutOfRange, name, index, len(current))
	}
	next := make([]answers.SubRecord, 0, len(current)-1)
	next = append(next, current[:index]...)
	next = append(next, current[index+1:]...)
	c.state.Answers[name] = next
	return nil
}

// ValidateStep checks the current step's required fields and returns every
// violation in declared order. The preview has nothing to validate.
func (c *Controller) ValidateStep() []Violation {
	step, ok := c.CurrentStep()
	if !ok {
		return nil
	}
	var violations []Violation
	for _, field := range step.Fields {
		if group, ok := field.(schema.Repeatable); ok {
			for i, entry := range c.state.Answers.Group(group.Name()) {
				for _, sub := range group.Fields {
					if !sub.IsRequired() || !isEmpty(entry[sub.Name()]) {
						continue
					}
					violations = append(violations, c.violation(answers.Nested(group.Name(), i, sub.Name()), sub))
				}
			}
			continue
		}
		if !field.IsRequired() {
			continue
		}
		value, _ := c.state.Answers.Get(field.Name())
		if isEmpty(value) {
			violations = append(violations, c.violation(answers.Top(field.Name()), field))
		}
	}
	return violations
}

// Next validates the current step and advances when it is valid. On failure
// the state is unchanged and a *ValidationError is returned.
func (c *Controller) Next() error {
	switch c.Phase() {
	case PhaseSubmitted:
		return ErrSubmitted
	case PhasePreview:
		return ErrInPreview
	}

	if violations := c.ValidateStep(); len(violations) > 0 {
		verr := &ValidationError{Step: c.state.Step, Violations: violations}
		if c.hooks.OnValidationFailed != nil {
			c.hooks.OnValidationFailed(verr)
		}
		return verr
	}
	c.moveTo(c.state.Step + 1)
	return nil
}

// Back moves one step back without validation. From the preview it returns
// to the last step.
func (c *Controller) Back() error {
	if c.state.Submitted {
		return ErrSubmitted
	}
	if c.state.Step == 0 {
		return ErrFirstStep
	}
	c.moveTo(c.state.Step - 1)
	return nil
}

// Submit emits the record from the preview and closes the session.
func (c *Controller) Submit() (Submission, error) {
	switch c.Phase() {
	case PhaseSubmitted:
		return Submission{}, ErrSubmitted
	case PhaseEditing:
		return Submission{}, ErrNotInPreview
	}
	c.state.Submitted = true
	sub := Submission{
		Title:       c.schema.Title(),
		Answers:     c.state.Answers.Clone(),
		SubmittedAt: c.now().UTC(),
	}
	if c.hooks.OnSubmit != nil {
		c.hooks.OnSubmit(sub)
	}
	return sub, nil
}

func (c *Controller) moveTo(step int) {
	from := c.state.Step
	c.state.Step = step
	if c.hooks.OnStepChange != nil {
		c.hooks.OnStepChange(from, step)
	}
}

func (c *Controller) violation(path answers.Path, field schema.Field) Violation {
	return Violation{
		Path:    path,
		Label:   field.Label(),
		Message: c.requiredMessage(field),
	}
}

func (c *Controller) repeatable(name string) (schema.Repeatable, error) {
	field, ok := c.schema.Lookup(name)
	if !ok {
		return schema.Repeatable{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	group, ok := field.(schema.Repeatable)
	if !ok {
		return schema.Repeatable{}, fmt.Errorf("%w: %q is %s", ErrNotRepeatable, name, field.Type())
	}
	return group, nil
}

func (c *Controller) checkSequence(group schema.Repeatable, value any) ([]answers.SubRecord, error) {
	seq, ok := value.([]answers.SubRecord)
	if !ok {
		return nil, fmt.Errorf("%w: %q expects a list of entries, got %T", ErrValueType, group.Name(), value)
	}
	out := make([]answers.SubRecord, len(seq))
	for i, entry := range seq {
		for key, v := range entry {
			sub, ok := group.SubField(key)
			if !ok {
				return nil, fmt.Errorf("%w: %q in group %q", ErrUnknownField, key, group.Name())
			}
			if err := checkScalar(sub, v); err != nil {
				return nil, err
			}
		}
		out[i] = entry.Clone()
	}
	return out, nil
}

func checkScalar(field schema.Field, value any) error {
	switch field.(type) {
	case schema.Repeatable:
		return fmt.Errorf("%w: %q is a group and cannot hold a scalar", ErrValueType, field.Name())
	case schema.Unknown:
		switch value.(type) {
		case string, bool:
			return nil
		}
	default:
		if field.Type() == schema.FieldTypeCheckbox {
			if _, ok := value.(bool); ok {
				return nil
			}
			break
		}
		if _, ok := value.(string); ok {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (%s) got %T", ErrValueType, field.Name(), field.Type(), value)
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	default:
		return false
	}
}

func copySequence(seq []answers.SubRecord, extra int) []answers.SubRecord {
	out := make([]answers.SubRecord, len(seq), len(seq)+extra)
	copy(out, seq)
	return out
}

package schema

// Step is one page of the wizard.
type Step struct {
	Title       string
	Description string
	Fields      []Field
}

// Schema is the ordered, immutable list of steps driving a wizard. Build it
// with New or the loader; the zero value has no steps.
type Schema struct {
	title string
	steps []Step
	index map[string]Field
}

// New assembles a schema from steps, indexing top-level fields by name. When
// two steps declare the same top-level name the first declaration wins.
func New(title string, steps ...Step) *Schema {
	s := &Schema{
		title: title,
		steps: append([]Step(nil), steps...),
		index: make(map[string]Field),
	}
	for _, step := range s.steps {
		for _, field := range step.Fields {
			if _, exists := s.index[field.Name()]; exists {
				continue
			}
			s.index[field.Name()] = field
		}
	}
	return s
}

// Title returns the optional form title.
func (s *Schema) Title() string {
	if s == nil {
		return ""
	}
	return s.title
}

// StepCount returns the number of steps; the preview sits at this index.
func (s *Schema) StepCount() int {
	if s == nil {
		return 0
	}
	return len(s.steps)
}

// Step returns the step at index i.
func (s *Schema) Step(i int) (Step, bool) {
	if s == nil || i < 0 || i >= len(s.steps) {
		return Step{}, false
	}
	return s.steps[i], true
}

// Steps returns a copy of the step list.
func (s *Schema) Steps() []Step {
	if s == nil {
		return nil
	}
	return append([]Step(nil), s.steps...)
}

// Lookup finds a top-level field by name across all steps.
func (s *Schema) Lookup(name string) (Field, bool) {
	if s == nil {
		return nil, false
	}
	field, ok := s.index[name]
	return field, ok
}

// Fields returns every top-level field in declaration order.
func (s *Schema) Fields() []Field {
	if s == nil {
		return nil
	}
	var out []Field
	for _, step := range s.steps {
		out = append(out, step.Fields...)
	}
	return out
}

package components

// Component names, one per field type the wizard renders.
const (
	NameText       = "text"
	NameNumber     = "number"
	NameSelect     = "select"
	NameRadio      = "radio"
	NameCheckbox   = "checkbox"
	NameRepeatable = "repeatable"
)

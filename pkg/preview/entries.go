package preview

import (
	"github.com/goliatone/go-formwizard/pkg/answers"
	"github.com/goliatone/go-formwizard/pkg/schema"
)

// Entry is one answered field in schema declaration order. Scalar fields set
// Value; repeatable fields set Items, one slice of entries per sub-record.
type Entry struct {
	Name       string
	Label      string
	Type       schema.FieldType
	Value      any
	Repeatable bool
	Items      [][]Entry
}

// Entries walks the schema and returns the answered fields in declaration
// order. Fields never entered are omitted; a name declared twice is reported
// once.
func Entries(s *schema.Schema, record answers.Record) []Entry {
	seen := make(map[string]struct{})
	var out []Entry
	for _, field := range s.Fields() {
		if _, dup := seen[field.Name()]; dup {
			continue
		}
		seen[field.Name()] = struct{}{}

		value, ok := record.Get(field.Name())
		if !ok {
			continue
		}
		entry := Entry{Name: field.Name(), Label: field.Label(), Type: field.Type()}
		if group, isGroup := field.(schema.Repeatable); isGroup {
			entry.Repeatable = true
			entry.Items = make([][]Entry, 0)
			for _, sub := range record.Group(field.Name()) {
				entry.Items = append(entry.Items, subEntries(group, sub))
			}
		} else {
			entry.Value = value
		}
		out = append(out, entry)
	}
	return out
}

func subEntries(group schema.Repeatable, sub answers.SubRecord) []Entry {
	out := make([]Entry, 0, len(sub))
	for _, field := range group.Fields {
		value, ok := sub[field.Name()]
		if !ok {
			continue
		}
		out = append(out, Entry{Name: field.Name(), Label: field.Label(), Type: field.Type(), Value: value})
	}
	return out
}

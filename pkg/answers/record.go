package answers

import (
	"encoding/json"
	"sort"
)

// SubRecord is one entry of a repeatable field, keyed by sub-field name.
type SubRecord map[string]any

// Clone returns a shallow copy; sub-record values are scalars.
func (s SubRecord) Clone() SubRecord {
	if s == nil {
		return SubRecord{}
	}
	out := make(SubRecord, len(s))
	for key, value := range s {
		out[key] = value
	}
	return out
}

// Record is the accumulated answer set. Values are string, bool or, for
// repeatable fields, []SubRecord.
type Record map[string]any

// Get returns the value stored under name.
func (r Record) Get(name string) (any, bool) {
	if r == nil {
		return nil, false
	}
	value, ok := r[name]
	return value, ok
}

// Group returns the sequence stored under name. Absent or non-sequence values
// read as an empty sequence.
func (r Record) Group(name string) []SubRecord {
	if r == nil {
		return []SubRecord{}
	}
	switch v := r[name].(type) {
	case []SubRecord:
		return v
	case []map[string]any:
		out := make([]SubRecord, len(v))
		for i, entry := range v {
			out[i] = SubRecord(entry)
		}
		return out
	case []any:
		out := make([]SubRecord, 0, len(v))
		for _, entry := range v {
			switch e := entry.(type) {
			case SubRecord:
				out = append(out, e)
			case map[string]any:
				out = append(out, SubRecord(e))
			default:
				out = append(out, SubRecord{})
			}
		}
		return out
	default:
		return []SubRecord{}
	}
}

// Clone deep copies the record, including every sub-record sequence.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for key, value := range r {
		if seq, ok := value.([]SubRecord); ok {
			cloned := make([]SubRecord, len(seq))
			for i, entry := range seq {
				cloned[i] = entry.Clone()
			}
			out[key] = cloned
			continue
		}
		out[key] = value
	}
	return out
}

// Keys returns the stored names sorted alphabetically.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for key := range r {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// UnmarshalJSON restores repeatable sequences as []SubRecord so a record
// survives a JSON round trip with its typed shape intact.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Record, len(raw))
	for key, value := range raw {
		out[key] = normalize(value)
	}
	*r = out
	return nil
}

func normalize(value any) any {
	items, ok := value.([]any)
	if !ok {
		return value
	}
	seq := make([]SubRecord, 0, len(items))
	for _, item := range items {
		entry, _ := item.(map[string]any)
		seq = append(seq, SubRecord(entry).Clone())
	}
	return seq
}

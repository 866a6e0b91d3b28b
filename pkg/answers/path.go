package answers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPath is returned when a qualified name is neither a bare name nor
// a group.index.name triple.
var ErrInvalidPath = errors.New("answers: invalid qualified name")

// Path addresses one slot in the record: a top-level field or a sub-field of
// one entry inside a repeatable group.
type Path struct {
	Group string
	Index int
	Name  string
}

// Top addresses a top-level field.
func Top(name string) Path {
	return Path{Name: name, Index: -1}
}

// Nested addresses sub-field name of entry index inside group.
func Nested(group string, index int, name string) Path {
	return Path{Group: group, Index: index, Name: name}
}

// IsNested reports whether the path points inside a repeatable group.
func (p Path) IsNested() bool {
	return p.Group != ""
}

// String renders the qualified name used by form posts.
func (p Path) String() string {
	if !p.IsNested() {
		return p.Name
	}
	return p.Group + "." + strconv.Itoa(p.Index) + "." + p.Name
}

// ParsePath reverses Path.String.
func ParsePath(qualified string) (Path, error) {
	parts := strings.Split(qualified, ".")
	switch len(parts) {
	case 1:
		if strings.TrimSpace(parts[0]) == "" {
			return Path{}, fmt.Errorf("%w: empty name", ErrInvalidPath)
		}
		return Top(parts[0]), nil
	case 3:
		if parts[0] == "" || parts[2] == "" {
			return Path{}, fmt.Errorf("%w: %q", ErrInvalidPath, qualified)
		}
		index, err := strconv.Atoi(parts[1])
		if err != nil || index < 0 {
			return Path{}, fmt.Errorf("%w: %q has a bad index", ErrInvalidPath, qualified)
		}
		return Nested(parts[0], index, parts[2]), nil
	default:
		return Path{}, fmt.Errorf("%w: %q", ErrInvalidPath, qualified)
	}
}

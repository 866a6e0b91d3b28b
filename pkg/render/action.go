package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ActionKind names a button a page can post.
type ActionKind string

const (
	ActionNext   ActionKind = "next"
	ActionBack   ActionKind = "back"
	ActionSubmit ActionKind = "submit"
	ActionAdd    ActionKind = "add"
	ActionRemove ActionKind = "remove"
	// ActionSave stores posted values without moving.
	ActionSave ActionKind = "save"
)

// ErrInvalidAction is returned by ParseAction for unknown button values.
var ErrInvalidAction = errors.New("render: invalid action")

// Action is a parsed button value. Group and Index are set for add/remove.
type Action struct {
	Kind  ActionKind
	Group string
	Index int
}

// AddAction builds the add button for a repeatable group.
func AddAction(group string) Action {
	return Action{Kind: ActionAdd, Group: group}
}

// RemoveAction builds the remove button for entry index of group.
func RemoveAction(group string, index int) Action {
	return Action{Kind: ActionRemove, Group: group, Index: index}
}

// String encodes the action as the posted button value: "next",
// "add:contacts", "remove:contacts:2".
func (a Action) String() string {
	switch a.Kind {
	case ActionAdd:
		return string(ActionAdd) + ":" + a.Group
	case ActionRemove:
		return string(ActionRemove) + ":" + a.Group + ":" + strconv.Itoa(a.Index)
	default:
		return string(a.Kind)
	}
}

// ParseAction decodes a posted button value. An empty value is a save.
func ParseAction(raw string) (Action, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Action{Kind: ActionSave}, nil
	}
	parts := strings.Split(raw, ":")
	kind := ActionKind(strings.ToLower(parts[0]))
	switch kind {
	case ActionNext, ActionBack, ActionSubmit, ActionSave:
		if len(parts) != 1 {
			break
		}
		return Action{Kind: kind}, nil
	case ActionAdd:
		if len(parts) != 2 || parts[1] == "" {
			break
		}
		return AddAction(parts[1]), nil
	case ActionRemove:
		if len(parts) != 3 || parts[1] == "" {
			break
		}
		index, err := strconv.Atoi(parts[2])
		if err != nil || index < 0 {
			break
		}
		return RemoveAction(parts[1], index), nil
	}
	return Action{}, fmt.Errorf("%w: %q", ErrInvalidAction, raw)
}

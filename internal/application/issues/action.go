package issues

import (
	"fmt"
	"strings"
)

// Action is one entry of the issues menu.
type Action int

const (
	ActionList Action = iota
	ActionCreate
	ActionFindDuplicates
	ActionFindSimilar
	ActionCancel
)

// Actions lists the menu in display order.
var Actions = []Action{ActionList, ActionCreate, ActionFindDuplicates, ActionFindSimilar, ActionCancel}

func (a Action) String() string {
	switch a {
	case ActionList:
		return "List issues"
	case ActionCreate:
		return "Create issue"
	case ActionFindDuplicates:
		return "Find duplicate issues"
	case ActionFindSimilar:
		return "Find similar issues"
	case ActionCancel:
		return "Cancel"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// ParseAction maps a menu label back to its action.
func ParseAction(label string) (Action, error) {
	for _, a := range Actions {
		if strings.EqualFold(a.String(), strings.TrimSpace(label)) {
			return a, nil
		}
	}
	return ActionCancel, fmt.Errorf("unknown issues action %q", label)
}

// Labels returns the menu labels in display order.
func Labels() []string {
	out := make([]string, len(Actions))
	for i, a := range Actions {
		out[i] = a.String()
	}
	return out
}

package keyboard

import (
	"fmt"
	"strings"
)

// Callback actions
const (
	ActionModel   = "model"
	ActionCommand = "cmd"
)

// Command shortcuts reachable from buttons
const (
	CommandTasks = "tasks"
	CommandPlan  = "plan"
)

// CallbackData represents parsed callback data
type CallbackData struct {
	Action string
	Value  string
}

// ParseCallback parses "action:value"
func ParseCallback(data string) (*CallbackData, error) {
	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 || parts[0] == "" {
		return nil, fmt.Errorf("invalid callback format: %q", data)
	}

	return &CallbackData{
		Action: parts[0],
		Value:  parts[1],
	}, nil
}

// EncodeCallback creates callback data string
func EncodeCallback(action, value string) string {
	return action + ":" + value
}

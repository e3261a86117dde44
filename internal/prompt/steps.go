package prompt

import (
	"fmt"
	"strings"

	"github.com/futig/coach-backend/internal/curriculum"
)

// stepPrompts covers steps shared by every curriculum
var stepPrompts = map[string]string{
	"":       "No checklist item is active yet. Help the user pick the first checklist item to work on and explain why it comes first.",
	"review": "Review what the user has done in this stage against the checklist and point out what is still missing.",
	"stuck":  "The user is stuck. Ask one clarifying question, then suggest the smallest possible next action.",
}

const genericStepPrompt = "The user is working on %q. Break it into two or three concrete actions they can finish this week and offer to help with the first one."

// StepPrompt resolves the prompt of a step: the stage's own prompt first, then the shared
// table, then a generic prompt naming the step.
func StepPrompt(entry curriculum.Entry, step string) string {
	step = strings.TrimSpace(step)
	if p, ok := entry.StepPrompt(step); ok {
		return p
	}
	if p, ok := stepPrompts[strings.ToLower(step)]; ok {
		return p
	}
	return fmt.Sprintf(genericStepPrompt, step)
}

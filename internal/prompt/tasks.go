package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/futig/coach-backend/internal/entity"
)

// MaxTasks caps how many tasks one generation adds to a stage
const MaxTasks = 10

var listMarker = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•]|\[[ xX]?\])\s+`)

// BuildTaskPrompt asks for a numbered list of tasks that completes the current stage
// of the project, seeded by the stage checklist.
func (a *Assembler) BuildTaskPrompt(mem entity.ProjectMemory, budget string) string {
	base := a.BuildStep(mem.BusinessType, mem.CurrentStage, mem.CurrentStep, "")

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\n## Task\n")
	fmt.Fprintf(&b, "Turn the checklist of this stage into at most %d concrete tasks the user can tick off.\n", MaxTasks)
	if budget != "" {
		fmt.Fprintf(&b, "The user's budget is %s; keep every task within it.\n", budget)
	}
	if len(mem.Notes) > 0 {
		b.WriteString("Take these notes from the user into account:\n")
		for _, k := range sortedKeys(mem.Notes) {
			fmt.Fprintf(&b, "- %s: %s\n", k, mem.Notes[k])
		}
	}
	b.WriteString("Answer with a numbered list only, one task per line, no introduction.")
	return b.String()
}

// ParseTasks extracts tasks from a numbered or bulleted list. Lines without a list marker
// are ignored unless the text has no markers at all. Duplicates are dropped and at most
// MaxTasks are returned.
func ParseTasks(content string) []string {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	marked := false
	for _, line := range lines {
		if listMarker.MatchString(line) {
			marked = true
			break
		}
	}

	seen := make(map[string]struct{})
	tasks := make([]string, 0, MaxTasks)
	for _, line := range lines {
		if marked && !listMarker.MatchString(line) {
			continue
		}
		task := strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		task = strings.Trim(task, "*_ ")
		if task == "" || strings.HasSuffix(task, ":") {
			continue
		}

		key := strings.ToLower(task)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		tasks = append(tasks, task)
		if len(tasks) == MaxTasks {
			break
		}
	}
	return tasks
}

// TasksOrChecklist parses content and falls back to the checklist when nothing parses
func TasksOrChecklist(content string, checklist []string) []string {
	if tasks := ParseTasks(content); len(tasks) > 0 {
		return tasks
	}
	if len(checklist) > MaxTasks {
		checklist = checklist[:MaxTasks]
	}
	out := make([]string, len(checklist))
	copy(out, checklist)
	return out
}

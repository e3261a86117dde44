package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/futig/coach-backend/internal/entity"
)

func TestParseTasks(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "numbered list with intro",
			content: "Here is your plan:\n1. Pick a niche\n2) Study five competitors\n\n3. **Pick one hero product**",
			want:    []string{"Pick a niche", "Study five competitors", "Pick one hero product"},
		},
		{
			name:    "bullets and duplicates",
			content: "- Write the script\n* write the script\n• Send 20 messages",
			want:    []string{"Write the script", "Send 20 messages"},
		},
		{
			name:    "plain lines without markers",
			content: "Set up payments\r\nWrite the FAQ\r\n",
			want:    []string{"Set up payments", "Write the FAQ"},
		},
		{
			name:    "headings are skipped",
			content: "Tasks:\n1. One\nNotes:\n2. Two",
			want:    []string{"One", "Two"},
		},
		{
			name:    "empty",
			content: "   \n\n",
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTasks(tt.content))
		})
	}
}

func TestParseTasks_Caps(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 15; i++ {
		fmt.Fprintf(&b, "%d. Task %d\n", i, i)
	}

	got := ParseTasks(b.String())

	assert.Len(t, got, MaxTasks)
	assert.Equal(t, "Task 1", got[0])
	assert.Equal(t, "Task 10", got[MaxTasks-1])
}

func TestTasksOrChecklist(t *testing.T) {
	checklist := []string{"a", "b"}

	assert.Equal(t, []string{"x"}, TasksOrChecklist("1. x", checklist))
	assert.Equal(t, checklist, TasksOrChecklist("", checklist))
}

func TestBuildTaskPrompt(t *testing.T) {
	a := newAssembler(t)
	mem := entity.ProjectMemory{
		BusinessType: entity.BusinessTypeEcommerce,
		CurrentStage: "stage_2",
		Notes:        map[string]string{"niche": "pet toys", "constraint": "no inventory at home"},
	}

	got := a.BuildTaskPrompt(mem, "$1000")

	assert.Contains(t, got, "## Current stage: Supplier & Sourcing (stage_2)")
	assert.Contains(t, got, "at most 10 concrete tasks")
	assert.Contains(t, got, "budget is $1000")
	assert.Contains(t, got, "- constraint: no inventory at home\n- niche: pet toys")
	assert.True(t, strings.HasSuffix(got, "no introduction."))
}

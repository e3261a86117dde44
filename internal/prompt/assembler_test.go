package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/coach-backend/internal/curriculum"
	"github.com/futig/coach-backend/internal/entity"
)

func newAssembler(t *testing.T) *Assembler {
	t.Helper()
	kb, err := curriculum.Load()
	require.NoError(t, err)
	return NewAssembler(kb)
}

func TestBuild_ContainsStageContent(t *testing.T) {
	a := newAssembler(t)

	got := a.Build(entity.BusinessTypeSaaS, "stage_1", "Who should I interview?")

	assert.Contains(t, got, Preamble)
	assert.Contains(t, got, "Business model: SaaS.")
	assert.Contains(t, got, "## Current stage: Problem Discovery (stage_1)")
	assert.Contains(t, got, "Objective: Find a painful, frequent problem")
	assert.Contains(t, got, "- Interview ten people about their workflow")
	assert.Contains(t, got, "How you can help:\n- Write interview questions")
	assert.Contains(t, got, stepPrompts[""])
	assert.Contains(t, got, "## User message\nWho should I interview?")
}

func TestBuild_RendersOnlyOwnExtensions(t *testing.T) {
	a := newAssembler(t)

	tests := []struct {
		name    string
		bt      entity.BusinessType
		stage   entity.StageKey
		want    string
		notWant []string
	}{
		{"ecommerce product criteria", entity.BusinessTypeEcommerce, "stage_1", "Product criteria:\n- Sells for $25-$100", []string{"Outreach checklist", "Validation checklist"}},
		{"ecommerce minimum budget", entity.BusinessTypeEcommerce, entity.StagePreQualification, "Minimum starting budget: $500", []string{"Product criteria"}},
		{"smma outreach", entity.BusinessTypeSMMA, "stage_3", "Outreach checklist (review every message against it):", []string{"Product criteria", "Portfolio pieces"}},
		{"saas stack", entity.BusinessTypeSaaS, "stage_3", "Suggested tech stack:\n- A web framework you already know", []string{"Call script frameworks"}},
		{"copywriting portfolio", entity.BusinessTypeCopywriting, "stage_2", "Portfolio pieces:\n- A welcome email sequence", []string{"Suggested tech stack"}},
		{"sales scripts", entity.BusinessTypeSales, "stage_1", "Call script frameworks:\n- Opening and agenda setting", []string{"Outreach checklist"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Build(tt.bt, tt.stage, "")
			assert.Contains(t, got, tt.want)
			for _, nw := range tt.notWant {
				assert.NotContains(t, got, nw)
			}
			assert.NotContains(t, got, "## User message")
		})
	}
}

func TestBuild_UnknownStageFallsBack(t *testing.T) {
	a := newAssembler(t)

	got := a.Build(entity.BusinessTypeCopywriting, "stage_9", "help")

	assert.Contains(t, got, Preamble)
	assert.Contains(t, got, `stage "stage_9"`)
	assert.Contains(t, got, `"copywriting"`)
	assert.Contains(t, got, "## User message\nhelp")
	assert.NotContains(t, got, "## Current stage")
}

func TestBuild_IsDeterministic(t *testing.T) {
	a := newAssembler(t)

	first := a.BuildStep(entity.BusinessTypeSMMA, "stage_2", "review", "hi")
	second := a.BuildStep(entity.BusinessTypeSMMA, "stage_2", "review", "hi")

	assert.Equal(t, first, second)
}

func TestStepPrompt(t *testing.T) {
	kb, err := curriculum.Load()
	require.NoError(t, err)
	entry, err := kb.Lookup(entity.BusinessTypeSMMA, "stage_3")
	require.NoError(t, err)

	tests := []struct {
		name string
		step string
		want string
	}{
		{"stage specific", "Write a cold message script", "three short cold message variants"},
		{"shared table", "Review", stepPrompts["review"]},
		{"no step", "", stepPrompts[""]},
		{"generic template names the step", "Send 20 messages a day", `"Send 20 messages a day"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, StepPrompt(entry, tt.step), tt.want)
		})
	}
}

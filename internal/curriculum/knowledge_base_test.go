package curriculum

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/coach-backend/internal/entity"
)

func loadEmbedded(t *testing.T) *KnowledgeBase {
	t.Helper()
	kb, err := Load()
	require.NoError(t, err)
	return kb
}

func stages(keys ...string) []entity.StageKey {
	out := make([]entity.StageKey, len(keys))
	for i, k := range keys {
		out[i] = entity.StageKey(k)
	}
	return out
}

func TestLoad_Sequences(t *testing.T) {
	kb := loadEmbedded(t)

	tests := []struct {
		bt   entity.BusinessType
		want []entity.StageKey
	}{
		{entity.BusinessTypeEcommerce, stages("pre_qualification", "stage_1", "stage_2", "stage_3", "stage_4", "stage_5", "scaling")},
		{entity.BusinessTypeSMMA, stages("stage_1", "stage_2", "stage_3", "stage_4", "stage_5", "scaling")},
		{entity.BusinessTypeSaaS, stages("stage_1", "stage_2", "stage_3", "stage_4", "stage_5", "stage_6", "scaling")},
		{entity.BusinessTypeCopywriting, stages("stage_1", "stage_2", "stage_3", "stage_4", "scaling")},
		{entity.BusinessTypeSales, stages("stage_1", "stage_2", "stage_3", "stage_4", "scaling")},
	}

	for _, tt := range tests {
		t.Run(string(tt.bt), func(t *testing.T) {
			seq, err := kb.Sequence(tt.bt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, seq)
		})
	}
}

func TestLoad_EveryModelHasCurriculum(t *testing.T) {
	kb := loadEmbedded(t)

	for _, m := range entity.ModelOrder {
		_, err := kb.Curriculum(m.BusinessType())
		assert.NoError(t, err, "model %s", m)
	}
	assert.Len(t, kb.BusinessTypes(), len(entity.ModelOrder))
}

func TestSequence_ReturnsCopy(t *testing.T) {
	kb := loadEmbedded(t)

	seq, err := kb.Sequence(entity.BusinessTypeSMMA)
	require.NoError(t, err)
	seq[0] = "tampered"

	again, err := kb.Sequence(entity.BusinessTypeSMMA)
	require.NoError(t, err)
	assert.Equal(t, entity.StageKey("stage_1"), again[0])
}

func TestLookup(t *testing.T) {
	kb := loadEmbedded(t)

	e, err := kb.Lookup(entity.BusinessTypeSaaS, "stage_3")
	require.NoError(t, err)
	assert.Equal(t, "MVP Build", e.Title())
	assert.NotEmpty(t, e.Objective())
	assert.NotEmpty(t, e.Checklist())
	assert.NotEmpty(t, e.AISupport())

	saas, ok := e.(*SaaSEntry)
	require.True(t, ok)
	assert.Contains(t, saas.TechStack, "Stripe for billing")
}

func TestLookup_UnknownPairs(t *testing.T) {
	kb := loadEmbedded(t)

	tests := []struct {
		name  string
		bt    entity.BusinessType
		stage entity.StageKey
	}{
		{"stage beyond sequence", entity.BusinessTypeCopywriting, "stage_5"},
		{"pre-qualification outside ecommerce", entity.BusinessTypeSMMA, entity.StagePreQualification},
		{"unknown business type", "bakery", "stage_1"},
		{"empty stage", entity.BusinessTypeSales, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := kb.Lookup(tt.bt, tt.stage)
			require.Error(t, err)
			assert.True(t, errors.Is(err, entity.ErrUnknownStage))

			var stageErr *entity.UnknownStageError
			require.True(t, errors.As(err, &stageErr))
			assert.Equal(t, tt.stage, stageErr.Stage)
		})
	}
}

func TestExtensionsStayWithTheirType(t *testing.T) {
	kb := loadEmbedded(t)

	pre, err := kb.Lookup(entity.BusinessTypeEcommerce, entity.StagePreQualification)
	require.NoError(t, err)
	assert.True(t, pre.Optional())
	assert.Equal(t, "$500", pre.(*EcommerceEntry).MinimumBudget)

	niche, err := kb.Lookup(entity.BusinessTypeEcommerce, "stage_1")
	require.NoError(t, err)
	assert.Len(t, niche.(*EcommerceEntry).ProductCriteria, 5)

	outreach, err := kb.Lookup(entity.BusinessTypeSMMA, "stage_3")
	require.NoError(t, err)
	assert.NotEmpty(t, outreach.(*SMMAEntry).OutreachChecklist)

	portfolio, err := kb.Lookup(entity.BusinessTypeCopywriting, "stage_2")
	require.NoError(t, err)
	assert.NotEmpty(t, portfolio.(*CopywritingEntry).PortfolioPieces)

	script, err := kb.Lookup(entity.BusinessTypeSales, "stage_1")
	require.NoError(t, err)
	assert.NotEmpty(t, script.(*SalesEntry).ScriptFrameworks)
}

func TestFirstStage(t *testing.T) {
	kb := loadEmbedded(t)

	first, err := kb.FirstStage(entity.BusinessTypeEcommerce, false)
	require.NoError(t, err)
	assert.Equal(t, entity.StagePreQualification, first)

	first, err = kb.FirstStage(entity.BusinessTypeEcommerce, true)
	require.NoError(t, err)
	assert.Equal(t, entity.StageKey("stage_1"), first)

	first, err = kb.FirstStage(entity.BusinessTypeSaaS, true)
	require.NoError(t, err)
	assert.Equal(t, entity.StageKey("stage_1"), first)

	_, err = kb.FirstStage("bakery", false)
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}

func TestNext(t *testing.T) {
	kb := loadEmbedded(t)

	next, ok, err := kb.Next(entity.BusinessTypeSales, "stage_4")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, entity.StageScaling, next)

	_, ok, err = kb.Next(entity.BusinessTypeSales, entity.StageScaling)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = kb.Next(entity.BusinessTypeSales, "stage_9")
	assert.ErrorIs(t, err, entity.ErrUnknownStage)
}

func TestStepPrompt(t *testing.T) {
	kb := loadEmbedded(t)

	e, err := kb.Lookup(entity.BusinessTypeSMMA, "stage_3")
	require.NoError(t, err)

	p, ok := e.StepPrompt("Write a cold message script")
	assert.True(t, ok)
	assert.Contains(t, p, "outreach checklist")

	_, ok = e.StepPrompt("Send 20 messages a day")
	assert.False(t, ok)
}

func TestLoadFS_Rejects(t *testing.T) {
	valid := func(bt string) string {
		return "business_type: " + bt + "\ndisplay_name: X\nstages:\n  - key: stage_1\n    objective: o\n    checklist: [a]\n  - key: scaling\n    objective: o\n    checklist: [a]\n"
	}
	all := func() fstest.MapFS {
		fsys := fstest.MapFS{}
		for _, bt := range []string{"ecommerce", "smma", "saas", "copywriting", "sales"} {
			fsys[bt+".yaml"] = &fstest.MapFile{Data: []byte(valid(bt))}
		}
		return fsys
	}

	t.Run("minimal set loads", func(t *testing.T) {
		_, err := LoadFS(all())
		require.NoError(t, err)
	})

	t.Run("missing business type", func(t *testing.T) {
		fsys := all()
		delete(fsys, "sales.yaml")
		_, err := LoadFS(fsys)
		assert.ErrorContains(t, err, "sales")
	})

	t.Run("extension field of another type", func(t *testing.T) {
		fsys := all()
		fsys["smma.yaml"] = &fstest.MapFile{Data: []byte(valid("smma") + "    tech_stack: [go]\n")}
		_, err := LoadFS(fsys)
		assert.Error(t, err)
	})

	t.Run("sequence not ending in scaling", func(t *testing.T) {
		fsys := all()
		fsys["saas.yaml"] = &fstest.MapFile{Data: []byte("business_type: saas\nstages:\n  - key: stage_1\n    objective: o\n    checklist: [a]\n")}
		_, err := LoadFS(fsys)
		assert.ErrorContains(t, err, "scaling")
	})

	t.Run("duplicate stage", func(t *testing.T) {
		fsys := all()
		fsys["sales.yaml"] = &fstest.MapFile{Data: []byte(valid("sales") + "  - key: scaling\n    objective: o\n    checklist: [a]\n")}
		_, err := LoadFS(fsys)
		assert.ErrorContains(t, err, "duplicate")
	})

	t.Run("unknown business type", func(t *testing.T) {
		fsys := all()
		fsys["bakery.yaml"] = &fstest.MapFile{Data: []byte(valid("bakery"))}
		_, err := LoadFS(fsys)
		assert.ErrorIs(t, err, entity.ErrInvalidFormat)
	})
}

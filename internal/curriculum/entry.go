package curriculum

import "github.com/futig/coach-backend/internal/entity"

// Entry is one stage of a business type's curriculum. Every business type exposes
// the shared fields through this interface; type-specific fields live on the concrete
// entry types and are read only by code that switches on them.
type Entry interface {
	BusinessType() entity.BusinessType
	Stage() entity.StageKey
	Title() string
	Objective() string
	Checklist() []string
	AISupport() []string
	// StepPrompt returns the stage-specific prompt for a checklist step, if defined.
	StepPrompt(step string) (string, bool)
	Optional() bool
}

type baseEntry struct {
	businessType entity.BusinessType
	stage        entity.StageKey
	title        string
	objective    string
	checklist    []string
	aiSupport    []string
	stepPrompts  map[string]string
	optional     bool
}

func (e *baseEntry) BusinessType() entity.BusinessType { return e.businessType }
func (e *baseEntry) Stage() entity.StageKey            { return e.stage }
func (e *baseEntry) Title() string                     { return e.title }
func (e *baseEntry) Objective() string                 { return e.objective }
func (e *baseEntry) Checklist() []string               { return cloneStrings(e.checklist) }
func (e *baseEntry) AISupport() []string               { return cloneStrings(e.aiSupport) }
func (e *baseEntry) Optional() bool                    { return e.optional }

func (e *baseEntry) StepPrompt(step string) (string, bool) {
	p, ok := e.stepPrompts[step]
	return p, ok
}

// EcommerceEntry adds product selection criteria and, for pre-qualification, a minimum budget.
type EcommerceEntry struct {
	baseEntry
	ProductCriteria []string
	MinimumBudget   string
}

// SMMAEntry adds the checklist every outreach message is reviewed against.
type SMMAEntry struct {
	baseEntry
	OutreachChecklist []string
}

// SaaSEntry adds validation gates and a suggested tech stack.
type SaaSEntry struct {
	baseEntry
	ValidationChecklist []string
	TechStack           []string
}

// CopywritingEntry adds the pieces a portfolio should contain.
type CopywritingEntry struct {
	baseEntry
	PortfolioPieces []string
}

// SalesEntry adds the call script sections.
type SalesEntry struct {
	baseEntry
	ScriptFrameworks []string
}

// Summary copies the shared fields into the plain entity shape.
func Summary(e Entry) entity.CurriculumEntry {
	return entity.CurriculumEntry{
		BusinessType: e.BusinessType(),
		Stage:        e.Stage(),
		Title:        e.Title(),
		Objective:    e.Objective(),
		Checklist:    e.Checklist(),
		AISupport:    e.AISupport(),
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

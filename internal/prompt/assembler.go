// Package prompt assembles the instruction text sent to the text-generation collaborator.
// Everything here is a pure function of project state and curriculum content.
package prompt

import (
	"fmt"
	"strings"

	"github.com/futig/coach-backend/internal/curriculum"
	"github.com/futig/coach-backend/internal/entity"
)

// Preamble opens every instruction
const Preamble = `You are a practical business coach. Give concrete, actionable guidance sized for a solo founder.
Keep answers short, use plain language and end with one clear next action.`

// Catalog is the curriculum lookup the assembler needs
type Catalog interface {
	Lookup(bt entity.BusinessType, stage entity.StageKey) (curriculum.Entry, error)
	Curriculum(bt entity.BusinessType) (*curriculum.Curriculum, error)
}

type Assembler struct {
	catalog Catalog
}

func NewAssembler(catalog Catalog) *Assembler {
	return &Assembler{catalog: catalog}
}

// Build returns the instruction for a user message at the given stage with no active step.
func (a *Assembler) Build(bt entity.BusinessType, stage entity.StageKey, userInput string) string {
	return a.BuildStep(bt, stage, "", userInput)
}

// BuildStep returns the instruction for a user message at a stage and checklist step.
// It never fails: when the stage has no curriculum entry the caller still gets a
// generic instruction that names the missing stage.
func (a *Assembler) BuildStep(bt entity.BusinessType, stage entity.StageKey, step, userInput string) string {
	entry, err := a.catalog.Lookup(bt, stage)
	if err != nil {
		return fallback(bt, stage, userInput)
	}

	var b strings.Builder
	b.WriteString(Preamble)
	b.WriteString("\n\n")

	writeBanner(&b, a.banner(bt))
	writeStage(&b, entry)
	renderExtensions(&b, entry)

	b.WriteString("## Current step\n")
	b.WriteString(StepPrompt(entry, step))
	b.WriteString("\n")

	writeUserInput(&b, userInput)
	return strings.TrimRight(b.String(), "\n")
}

func (a *Assembler) banner(bt entity.BusinessType) string {
	c, err := a.catalog.Curriculum(bt)
	if err != nil {
		return string(bt)
	}
	if c.Banner == "" {
		return fmt.Sprintf("Business model: %s.", c.DisplayName)
	}
	return fmt.Sprintf("Business model: %s. %s", c.DisplayName, c.Banner)
}

func fallback(bt entity.BusinessType, stage entity.StageKey, userInput string) string {
	var b strings.Builder
	b.WriteString(Preamble)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "There is no curriculum guidance for stage %q of the %q business model. "+
		"Help the user with general advice and suggest they pick a stage from their roadmap.\n", stage, bt)
	writeUserInput(&b, userInput)
	return strings.TrimRight(b.String(), "\n")
}

func writeBanner(b *strings.Builder, banner string) {
	b.WriteString("## Business\n")
	b.WriteString(banner)
	b.WriteString("\n\n")
}

func writeStage(b *strings.Builder, e curriculum.Entry) {
	fmt.Fprintf(b, "## Current stage: %s (%s)\n", e.Title(), e.Stage())
	fmt.Fprintf(b, "Objective: %s\n\n", e.Objective())
	writeList(b, "Checklist", e.Checklist())
	writeList(b, "How you can help", e.AISupport())
}

func writeUserInput(b *strings.Builder, userInput string) {
	userInput = strings.TrimSpace(userInput)
	if userInput == "" {
		return
	}
	b.WriteString("\n## User message\n")
	b.WriteString(userInput)
	b.WriteString("\n")
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(title)
	b.WriteString(":\n")
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// renderExtensions writes the fields only one business type carries
func renderExtensions(b *strings.Builder, entry curriculum.Entry) {
	switch e := entry.(type) {
	case *curriculum.EcommerceEntry:
		if e.MinimumBudget != "" {
			fmt.Fprintf(b, "Minimum starting budget: %s\n\n", e.MinimumBudget)
		}
		writeList(b, "Product criteria", e.ProductCriteria)
	case *curriculum.SMMAEntry:
		writeList(b, "Outreach checklist (review every message against it)", e.OutreachChecklist)
	case *curriculum.SaaSEntry:
		writeList(b, "Validation checklist", e.ValidationChecklist)
		writeList(b, "Suggested tech stack", e.TechStack)
	case *curriculum.CopywritingEntry:
		writeList(b, "Portfolio pieces", e.PortfolioPieces)
	case *curriculum.SalesEntry:
		writeList(b, "Call script frameworks", e.ScriptFrameworks)
	}
}

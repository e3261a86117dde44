package project

import (
	"fmt"
	"sort"

	"github.com/futig/coach-backend/internal/entity"
)

var statusMarks = map[entity.StageStatus]string{
	entity.StageStatusCompleted: "[x]",
	entity.StageStatusCurrent:   "[>]",
	entity.StageStatusUpcoming:  "[ ]",
}

func (uc *ProjectUsecase) planDocument(project *entity.Project, todos []*entity.Todo) (*entity.PlanDocument, error) {
	mem := project.Memory

	roadmap, err := uc.controller.Roadmap(&mem)
	if err != nil {
		return nil, err
	}

	entry, err := uc.controller.GetCurrentStageEntry(mem.BusinessType, mem.CurrentStage)
	if err != nil {
		return nil, err
	}

	doc := &entity.PlanDocument{
		Title:    fmt.Sprintf("%s business plan", businessTitle(mem.BusinessType)),
		Subtitle: fmt.Sprintf("Current stage: %s", entry.Title()),
	}

	stages := make([]string, 0, len(roadmap))
	for _, s := range roadmap {
		stages = append(stages, fmt.Sprintf("%s %s", statusMarks[s.Status], s.Title))
	}
	doc.Sections = append(doc.Sections, entity.PlanSection{Heading: "Roadmap", Items: stages})

	current := entity.PlanSection{Heading: "Current stage checklist", Text: entry.Objective(), Items: entry.Checklist()}
	if mem.CurrentStep != "" {
		current.Text = fmt.Sprintf("%s\nWorking on: %s", entry.Objective(), mem.CurrentStep)
	}
	doc.Sections = append(doc.Sections, current)

	if len(todos) > 0 {
		items := make([]string, 0, len(todos))
		for _, t := range todos {
			mark := "[ ]"
			if t.Completed {
				mark = "[x]"
			}
			items = append(items, fmt.Sprintf("%s %s (%s)", mark, t.Task, t.Stage))
		}
		doc.Sections = append(doc.Sections, entity.PlanSection{Heading: "Tasks", Items: items})
	}

	if len(mem.Notes) > 0 {
		keys := make([]string, 0, len(mem.Notes))
		for k := range mem.Notes {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		items := make([]string, 0, len(keys))
		for _, k := range keys {
			items = append(items, fmt.Sprintf("%s: %s", k, mem.Notes[k]))
		}
		doc.Sections = append(doc.Sections, entity.PlanSection{Heading: "Notes", Items: items})
	}

	if project.Budget != "" {
		doc.Sections = append(doc.Sections, entity.PlanSection{Heading: "Budget", Text: project.Budget})
	}

	return doc, nil
}

func businessTitle(bt entity.BusinessType) string {
	for _, m := range entity.ModelOrder {
		if m.BusinessType() == bt {
			return m.DisplayName()
		}
	}
	return string(bt)
}

// Package progression moves a project through the stage sequence of its curriculum.
// The controller holds no project state of its own: every operation works on the
// ProjectMemory the caller owns and persists.
package progression

import (
	"fmt"
	"maps"

	"github.com/futig/coach-backend/internal/curriculum"
	"github.com/futig/coach-backend/internal/entity"
)

// Catalog is the read side of the curriculum knowledge base
type Catalog interface {
	Lookup(bt entity.BusinessType, stage entity.StageKey) (curriculum.Entry, error)
	Sequence(bt entity.BusinessType) ([]entity.StageKey, error)
	FirstStage(bt entity.BusinessType, skipOptional bool) (entity.StageKey, error)
	Next(bt entity.BusinessType, stage entity.StageKey) (entity.StageKey, bool, error)
	Position(bt entity.BusinessType, stage entity.StageKey) (int, error)
}

type Controller struct {
	catalog Catalog
}

func NewController(catalog Catalog) *Controller {
	return &Controller{catalog: catalog}
}

// NewMemory returns the initial memory of a project: first stage of the business type,
// no step, nothing completed.
func (c *Controller) NewMemory(bt entity.BusinessType, skipOptional bool) (entity.ProjectMemory, error) {
	if err := bt.Validate(); err != nil {
		return entity.ProjectMemory{}, err
	}

	first, err := c.catalog.FirstStage(bt, skipOptional)
	if err != nil {
		return entity.ProjectMemory{}, fmt.Errorf("resolve first stage: %w", err)
	}

	return entity.ProjectMemory{
		BusinessType:    bt,
		CurrentStage:    first,
		CurrentStep:     "",
		CompletedStages: []entity.StageKey{},
		Outputs:         map[string]any{},
		Notes:           map[string]string{},
		TasksInProgress: []string{},
	}, nil
}

// GetCurrentStageEntry looks up the curriculum entry of (bt, stage). A missing pair
// fails with *entity.UnknownStageError and is not worth retrying.
func (c *Controller) GetCurrentStageEntry(bt entity.BusinessType, stage entity.StageKey) (curriculum.Entry, error) {
	return c.catalog.Lookup(bt, stage)
}

// MarkStageCompleted adds stage to the completed set. Marking twice is a no-op.
func (c *Controller) MarkStageCompleted(mem *entity.ProjectMemory, stage entity.StageKey) error {
	if _, err := c.catalog.Position(mem.BusinessType, stage); err != nil {
		return err
	}
	if mem.HasCompleted(stage) {
		return nil
	}
	mem.CompletedStages = append(mem.CompletedStages, stage)
	return nil
}

// AdvanceStage moves the project to the stage after its current one and returns it.
// At the terminal stage nothing changes and ok is false. Entering a new stage clears
// the active step and the tasks of the previous stage.
func (c *Controller) AdvanceStage(mem *entity.ProjectMemory) (next entity.StageKey, ok bool, err error) {
	next, ok, err = c.catalog.Next(mem.BusinessType, mem.CurrentStage)
	if err != nil || !ok {
		return "", false, err
	}

	c.enter(mem, next)
	return next, true, nil
}

// JumpToStage moves the project to any stage of its sequence. Completed stages are kept.
func (c *Controller) JumpToStage(mem *entity.ProjectMemory, stage entity.StageKey) error {
	if _, err := c.catalog.Position(mem.BusinessType, stage); err != nil {
		return err
	}
	if mem.CurrentStage == stage {
		return nil
	}

	c.enter(mem, stage)
	return nil
}

func (c *Controller) enter(mem *entity.ProjectMemory, stage entity.StageKey) {
	mem.CurrentStage = stage
	mem.CurrentStep = ""
	mem.TasksInProgress = []string{}
}

// UpdateCurrentStep overwrites the active checklist step
func (c *Controller) UpdateCurrentStep(mem *entity.ProjectMemory, step string) {
	mem.CurrentStep = step
}

// RecordOutputs merges partial into the outputs. Existing keys are never removed; on
// collision the new value wins.
func (c *Controller) RecordOutputs(mem *entity.ProjectMemory, partial map[string]any) {
	if mem.Outputs == nil {
		mem.Outputs = make(map[string]any, len(partial))
	}
	maps.Copy(mem.Outputs, partial)
}

// RecordNote sets one note, last write wins
func (c *Controller) RecordNote(mem *entity.ProjectMemory, key, text string) {
	if mem.Notes == nil {
		mem.Notes = make(map[string]string, 1)
	}
	mem.Notes[key] = text
}

// Roadmap lists every stage of the project's sequence with its status
func (c *Controller) Roadmap(mem *entity.ProjectMemory) ([]entity.RoadmapStage, error) {
	seq, err := c.catalog.Sequence(mem.BusinessType)
	if err != nil {
		return nil, err
	}

	out := make([]entity.RoadmapStage, 0, len(seq))
	for _, key := range seq {
		e, err := c.catalog.Lookup(mem.BusinessType, key)
		if err != nil {
			return nil, err
		}

		status := entity.StageStatusUpcoming
		switch {
		case key == mem.CurrentStage:
			status = entity.StageStatusCurrent
		case mem.HasCompleted(key):
			status = entity.StageStatusCompleted
		}
		out = append(out, entity.RoadmapStage{Stage: key, Title: e.Title(), Status: status})
	}
	return out, nil
}

// StageTasksComplete reports whether stage has at least one task and all of its tasks
// are completed. The decision rests only on what the caller marked, never on checklist content.
func StageTasksComplete(todos []entity.Todo, stage entity.StageKey) bool {
	found := false
	for _, t := range todos {
		if t.Stage != stage {
			continue
		}
		if !t.Completed {
			return false
		}
		found = true
	}
	return found
}

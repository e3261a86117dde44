// Package curriculum holds the static coaching content: for every business type an
// ordered sequence of stages, each with an objective, a checklist and AI-support hints.
package curriculum

import (
	"fmt"
	"slices"

	"github.com/futig/coach-backend/internal/entity"
)

// Curriculum is the stage sequence of one business type
type Curriculum struct {
	BusinessType entity.BusinessType
	DisplayName  string
	Banner       string

	sequence []entity.StageKey
	entries  map[entity.StageKey]Entry
}

func (c *Curriculum) validate() error {
	if err := c.BusinessType.Validate(); err != nil {
		return err
	}
	if len(c.sequence) == 0 {
		return fmt.Errorf("%s: curriculum has no stages", c.BusinessType)
	}
	if last := c.sequence[len(c.sequence)-1]; last != entity.StageScaling {
		return fmt.Errorf("%s: last stage must be %q, got %q", c.BusinessType, entity.StageScaling, last)
	}

	leading := true
	for _, key := range c.sequence {
		e := c.entries[key]
		if key == "" {
			return fmt.Errorf("%s: stage without key", c.BusinessType)
		}
		if e.Objective() == "" || len(e.Checklist()) == 0 {
			return fmt.Errorf("%s/%s: objective and checklist are required", c.BusinessType, key)
		}
		if e.Optional() && !leading {
			return fmt.Errorf("%s/%s: only leading stages can be optional", c.BusinessType, key)
		}
		leading = leading && e.Optional()
	}
	if c.entries[c.sequence[len(c.sequence)-1]].Optional() {
		return fmt.Errorf("%s: terminal stage cannot be optional", c.BusinessType)
	}
	return nil
}

// Sequence returns a copy of the ordered stage keys
func (c *Curriculum) Sequence() []entity.StageKey {
	return slices.Clone(c.sequence)
}

// KnowledgeBase is the read-only content of every curriculum. Safe for concurrent use.
type KnowledgeBase struct {
	curricula map[entity.BusinessType]*Curriculum
}

// Curriculum returns the curriculum of a business type
func (kb *KnowledgeBase) Curriculum(bt entity.BusinessType) (*Curriculum, error) {
	c, ok := kb.curricula[bt]
	if !ok {
		return nil, fmt.Errorf("%w: no curriculum for business type %q", entity.ErrInvalidParameter, bt)
	}
	return c, nil
}

// BusinessTypes lists the business types with a curriculum, sorted
func (kb *KnowledgeBase) BusinessTypes() []entity.BusinessType {
	out := make([]entity.BusinessType, 0, len(kb.curricula))
	for bt := range kb.curricula {
		out = append(out, bt)
	}
	slices.Sort(out)
	return out
}

// Lookup returns the entry for (bt, stage). A missing pair is a content gap and fails
// with *entity.UnknownStageError.
func (kb *KnowledgeBase) Lookup(bt entity.BusinessType, stage entity.StageKey) (Entry, error) {
	c, ok := kb.curricula[bt]
	if !ok {
		return nil, &entity.UnknownStageError{BusinessType: bt, Stage: stage}
	}
	e, ok := c.entries[stage]
	if !ok {
		return nil, &entity.UnknownStageError{BusinessType: bt, Stage: stage}
	}
	return e, nil
}

// Sequence returns a copy of the stage sequence of bt
func (kb *KnowledgeBase) Sequence(bt entity.BusinessType) ([]entity.StageKey, error) {
	c, err := kb.Curriculum(bt)
	if err != nil {
		return nil, err
	}
	return c.Sequence(), nil
}

// FirstStage returns the initial stage of bt. With skipOptional, leading optional stages
// such as ecommerce pre-qualification are skipped.
func (kb *KnowledgeBase) FirstStage(bt entity.BusinessType, skipOptional bool) (entity.StageKey, error) {
	c, err := kb.Curriculum(bt)
	if err != nil {
		return "", err
	}
	for _, key := range c.sequence {
		if skipOptional && c.entries[key].Optional() {
			continue
		}
		return key, nil
	}
	// validate guarantees a non-optional terminal stage
	return c.sequence[len(c.sequence)-1], nil
}

// Next returns the stage after stage in bt's sequence, or false when stage is terminal.
func (kb *KnowledgeBase) Next(bt entity.BusinessType, stage entity.StageKey) (entity.StageKey, bool, error) {
	c, ok := kb.curricula[bt]
	if !ok {
		return "", false, &entity.UnknownStageError{BusinessType: bt, Stage: stage}
	}
	i := slices.Index(c.sequence, stage)
	if i < 0 {
		return "", false, &entity.UnknownStageError{BusinessType: bt, Stage: stage}
	}
	if i == len(c.sequence)-1 {
		return "", false, nil
	}
	return c.sequence[i+1], true, nil
}

// Position returns the zero-based index of stage in bt's sequence
func (kb *KnowledgeBase) Position(bt entity.BusinessType, stage entity.StageKey) (int, error) {
	c, ok := kb.curricula[bt]
	if !ok {
		return -1, &entity.UnknownStageError{BusinessType: bt, Stage: stage}
	}
	i := slices.Index(c.sequence, stage)
	if i < 0 {
		return -1, &entity.UnknownStageError{BusinessType: bt, Stage: stage}
	}
	return i, nil
}

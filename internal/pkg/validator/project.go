package validator

import (
	"fmt"

	"github.com/futig/coach-backend/internal/entity"
)

func (v *Validator) ValidateCreateProject(req *entity.CreateProjectRequest) error {
	if err := v.ValidateUserID(req.UserID); err != nil {
		return err
	}
	if req.BusinessType == "" && req.Model == "" {
		return fmt.Errorf("%w: business_type or model", entity.ErrMissingField)
	}
	if req.BusinessType != "" {
		if err := req.BusinessType.Validate(); err != nil {
			return err
		}
	}
	if req.Model != "" {
		if err := req.Model.Validate(); err != nil {
			return err
		}
	}
	if len(req.Budget) > 64 {
		return fmt.Errorf("%w: budget is too long", entity.ErrInvalidParameter)
	}
	return nil
}

func (v *Validator) ValidateChat(req *entity.ChatRequest) error {
	if err := v.ValidateText("message", req.Message); err != nil {
		return err
	}
	for i, m := range req.History {
		if m.Role != entity.RoleUser && m.Role != entity.RoleAssistant {
			return fmt.Errorf("%w: history[%d].role must be user or assistant", entity.ErrInvalidParameter, i)
		}
		if len(m.Content) > v.maxInputLength {
			return fmt.Errorf("%w: history[%d] is too long", entity.ErrInvalidParameter, i)
		}
	}
	return nil
}

func (v *Validator) ValidateAdvance(req *entity.AdvanceStageRequest) error {
	if req.FromStage == "" {
		return fmt.Errorf("%w: from_stage", entity.ErrMissingField)
	}
	return nil
}

func (v *Validator) ValidateJump(req *entity.JumpStageRequest) error {
	if req.Stage == "" {
		return fmt.Errorf("%w: stage", entity.ErrMissingField)
	}
	return nil
}

// ValidateStep allows an empty step, which clears it
func (v *Validator) ValidateStep(req *entity.UpdateStepRequest) error {
	if len(req.Step) > v.maxInputLength {
		return fmt.Errorf("%w: step is too long", entity.ErrInvalidParameter)
	}
	return nil
}

func (v *Validator) ValidateOutputs(req *entity.RecordOutputsRequest) error {
	if len(req.Outputs) == 0 {
		return fmt.Errorf("%w: outputs", entity.ErrMissingField)
	}
	for k := range req.Outputs {
		if k == "" {
			return fmt.Errorf("%w: outputs key must not be empty", entity.ErrInvalidParameter)
		}
	}
	return nil
}

func (v *Validator) ValidateNote(key string, req *entity.RecordNoteRequest) error {
	if key == "" {
		return fmt.Errorf("%w: key", entity.ErrMissingField)
	}
	return v.ValidateText("text", req.Text)
}

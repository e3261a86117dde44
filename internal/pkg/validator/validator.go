// Package validator checks incoming requests before they reach the use cases.
package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/futig/coach-backend/internal/entity"
)

// Validator validates request payloads
type Validator struct {
	maxInputLength int
}

func NewValidator(maxInputLength int) *Validator {
	return &Validator{maxInputLength: maxInputLength}
}

// ValidateText checks a free-text field: present and not longer than the limit
func (v *Validator) ValidateText(field, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: %s", entity.ErrMissingField, field)
	}
	if len(text) > v.maxInputLength {
		return fmt.Errorf("%w: %s is longer than %d bytes", entity.ErrInvalidParameter, field, v.maxInputLength)
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: %s is not valid UTF-8", entity.ErrInvalidFormat, field)
	}
	return nil
}

// ValidateUserID checks a path-supplied user id
func (v *Validator) ValidateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user_id", entity.ErrMissingField)
	}
	if len(userID) > 128 {
		return fmt.Errorf("%w: user_id is too long", entity.ErrInvalidParameter)
	}
	return nil
}

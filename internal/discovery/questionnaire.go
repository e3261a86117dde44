package discovery

import (
	"fmt"

	"github.com/futig/coach-backend/internal/entity"
)

// NewState returns the initial questionnaire state: first question, no answers
func NewState() entity.QuestionnaireState {
	return entity.QuestionnaireState{
		CurrentQuestionIndex: 0,
		UserAnswers:          entity.UserAnswers{},
		IsComplete:           false,
	}
}

// UpdateState normalizes rawAnswer against the current question, stores it and moves to
// the next question. The input state is not modified; the caller persists the result.
// Calling it on a completed state is a misuse and fails with *entity.InvalidStateError.
func UpdateState(state entity.QuestionnaireState, rawAnswer string) (entity.QuestionnaireState, error) {
	if state.IsComplete {
		return state, &entity.InvalidStateError{
			Op:     "update questionnaire",
			Reason: "questionnaire is already complete",
		}
	}

	question, ok := QuestionAt(state.CurrentQuestionIndex)
	if !ok {
		return state, &entity.InvalidStateError{
			Op:     "update questionnaire",
			Reason: fmt.Sprintf("question index %d is out of range", state.CurrentQuestionIndex),
		}
	}

	next := entity.QuestionnaireState{
		CurrentQuestionIndex: state.CurrentQuestionIndex,
		UserAnswers:          state.UserAnswers.Clone(),
	}
	next.UserAnswers[question.Category] = Normalize(rawAnswer, question.Index)

	if next.CurrentQuestionIndex < QuestionCount()-1 {
		next.CurrentQuestionIndex++
	} else {
		next.CurrentQuestionIndex = QuestionCount()
		next.IsComplete = true
	}

	return next, nil
}

// CurrentQuestion returns the question the state is waiting for, false once complete
func CurrentQuestion(state entity.QuestionnaireState) (entity.Question, bool) {
	if state.IsComplete {
		return entity.Question{}, false
	}
	return QuestionAt(state.CurrentQuestionIndex)
}

// Package keyboard builds inline keyboards and parses their callback data.
package keyboard

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/futig/coach-backend/internal/entity"
)

// Builder creates inline keyboards
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// ModelChoiceKeyboard offers one button per tied model, in tie-break order
func (b *Builder) ModelChoiceKeyboard(models []entity.ModelKey) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(models))
	for _, m := range models {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(m.DisplayName(), EncodeCallback(ActionModel, string(m))),
		))
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// ProjectKeyboard holds the shortcuts shown under stage messages
func (b *Builder) ProjectKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Tasks", EncodeCallback(ActionCommand, CommandTasks)),
			tgbotapi.NewInlineKeyboardButtonData("📄 Plan", EncodeCallback(ActionCommand, CommandPlan)),
		),
	)
}

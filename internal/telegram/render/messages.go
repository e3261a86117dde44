// Package render builds the texts the Telegram bot sends.
package render

import (
	"fmt"
	"strings"

	"github.com/futig/coach-backend/internal/entity"
)

const (
	MsgWelcome = `👋 Hi! I'm your business coach.

Tell me what you'd like to build. If you already know the business model (ecommerce, SMMA, copywriting, high-ticket sales or SaaS), just name it. Otherwise I'll ask you ten quick questions and recommend one.`

	MsgHelp = `🤖 Commands:

/start - start over with a new business idea
/stage - show your current stage
/tasks - get tasks for this stage
/done <n> - mark task n from /tasks as done
/plan - download your plan as PDF
/reset - forget everything and start over
/help - show this help

Between commands, just write to me. I'll answer questions about your current stage.`

	MsgReset       = `🧹 Done, I forgot our conversation. Send /start when you're ready.`
	MsgBusy        = `⏳ I'm still working on your previous message. Give me a moment.`
	MsgPickModel   = `Please pick one of the models with the buttons above.`
	MsgNoProject   = `You don't have a project yet. Send /start and tell me what you'd like to build.`
	MsgDoneUsage   = `Send /done with a task number from /tasks, for example /done 2.`
	MsgNoTasks     = `No tasks yet. Send /tasks and I'll suggest some for this stage.`
	MsgPlanCaption = `📄 Your business plan`
	MsgUnknownCmd  = `❓ I don't know that command. Send /help to see what I can do.`
)

// RenderQuestion formats a questionnaire question with its position
func RenderQuestion(q *entity.Question, total int) string {
	return fmt.Sprintf("❓ Question %d of %d: %s", q.Index+1, total, q.Text)
}

// RenderStage describes the stage the project is in
func RenderStage(view *entity.StageView) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📍 %s\n\n%s\n", view.Title, view.Objective)

	if len(view.Checklist) > 0 {
		sb.WriteString("\nChecklist:\n")
		for _, item := range view.Checklist {
			fmt.Fprintf(&sb, "• %s\n", item)
		}
	}
	if view.CurrentStep != "" {
		fmt.Fprintf(&sb, "\nYou're working on: %s\n", view.CurrentStep)
	}

	sb.WriteString("\nAsk me anything about this stage, or send /tasks for concrete tasks.")
	return sb.String()
}

// RenderProjectCreated greets a new project with its first stage
func RenderProjectCreated(model entity.ModelKey, view *entity.StageView) string {
	return fmt.Sprintf("🚀 Your %s project is ready.\n\n%s", model.DisplayName(), RenderStage(view))
}

// RenderTodos numbers the open tasks as /done expects them
func RenderTodos(todos []*entity.Todo) string {
	if len(todos) == 0 {
		return MsgNoTasks
	}

	var sb strings.Builder
	sb.WriteString("📝 Your tasks:\n\n")
	for i, t := range todos {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, t.Task)
	}
	sb.WriteString("\nSend /done <n> when you finish one.")
	return sb.String()
}

// RenderTaskCompleted reports a finished task and, after an advance, the next stage
func RenderTaskCompleted(res *entity.CompleteTaskResult, next *entity.StageView) string {
	msg := fmt.Sprintf("✅ Done: %s", res.Todo.Task)
	switch {
	case res.Advanced && next != nil:
		return fmt.Sprintf("%s\n\n🎉 Stage complete! On to the next one.\n\n%s", msg, RenderStage(next))
	case res.StageComplete:
		return msg + "\n\n🏁 You've completed the final stage. Keep scaling!"
	default:
		return msg
	}
}

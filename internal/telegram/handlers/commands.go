package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/coach-backend/internal/entity"
	"github.com/futig/coach-backend/internal/telegram/keyboard"
	"github.com/futig/coach-backend/internal/telegram/render"
	"github.com/futig/coach-backend/internal/telegram/state"
)

// Bot commands
const (
	CommandStart = "start"
	CommandHelp  = "help"
	CommandReset = "reset"
	CommandStage = "stage"
	CommandTasks = keyboard.CommandTasks
	CommandDone  = "done"
	CommandPlan  = keyboard.CommandPlan
)

// slowCommands touch the project or the text generator and hold the processing flag
var slowCommands = map[string]bool{
	CommandStage: true,
	CommandTasks: true,
	CommandDone:  true,
	CommandPlan:  true,
}

// CommandHandler runs slash commands in any phase
type CommandHandler struct {
	BaseHandler
	bot          API
	stateManager *state.Manager
	discoveryUC  DiscoveryUsecase
	projectUC    ProjectUsecase
	keyboard     *keyboard.Builder
}

func NewCommandHandler(
	bot API,
	stateManager *state.Manager,
	discoveryUC DiscoveryUsecase,
	projectUC ProjectUsecase,
	kb *keyboard.Builder,
) *CommandHandler {
	return &CommandHandler{
		BaseHandler:  BaseHandler{messageSender: NewMessageSender(bot)},
		bot:          bot,
		stateManager: stateManager,
		discoveryUC:  discoveryUC,
		projectUC:    projectUC,
		keyboard:     kb,
	}
}

// NeedsProcessing reports whether the command must wait for other work of the same user
func (h *CommandHandler) NeedsProcessing(command string) bool {
	return slowCommands[command]
}

// Run executes command with its raw argument string
func (h *CommandHandler) Run(ctx context.Context, msg *Message, command, args string) error {
	ctx = ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(zap.String("command", command)))

	switch command {
	case CommandStart:
		return h.restart(ctx, msg, render.MsgWelcome)
	case CommandReset:
		return h.restart(ctx, msg, render.MsgReset)
	case CommandHelp:
		h.sendMessage(ctx, msg.ChatID, render.MsgHelp, nil)
		return nil
	case CommandStage:
		return h.stage(ctx, msg)
	case CommandTasks:
		return h.tasks(ctx, msg)
	case CommandDone:
		return h.done(ctx, msg, args)
	case CommandPlan:
		return h.plan(ctx, msg)
	default:
		h.sendMessage(ctx, msg.ChatID, render.MsgUnknownCmd, nil)
		return nil
	}
}

// restart forgets the questionnaire and the chat binding. Projects stay in storage.
func (h *CommandHandler) restart(ctx context.Context, msg *Message, text string) error {
	if err := h.discoveryUC.Reset(ctx, DiscoveryUserID(msg.UserID)); err != nil {
		return fmt.Errorf("reset discovery: %w", err)
	}
	if err := h.stateManager.DeleteChat(ctx, msg.UserID); err != nil {
		return err
	}

	h.sendMessage(ctx, msg.ChatID, text, nil)
	return nil
}

func (h *CommandHandler) stage(ctx context.Context, msg *Message) error {
	projectID, ok, err := h.projectID(ctx, msg)
	if err != nil || !ok {
		return err
	}

	view, err := h.projectUC.CurrentStage(ctx, projectID)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	h.sendMessage(ctx, msg.ChatID, render.RenderStage(view), h.keyboard.ProjectKeyboard())
	return nil
}

// tasks lists the open tasks of the current stage, generating new ones when none are open
func (h *CommandHandler) tasks(ctx context.Context, msg *Message) error {
	projectID, ok, err := h.projectID(ctx, msg)
	if err != nil || !ok {
		return err
	}

	view, err := h.projectUC.CurrentStage(ctx, projectID)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	todos, err := h.projectUC.ListTodos(ctx, projectID)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	open := openTodos(todos, view.Stage)
	if len(open) == 0 {
		typing := NewTypingNotifier(h.bot, msg.ChatID)
		typing.Start(ctx)
		generated, err := h.projectUC.GenerateTasks(ctx, projectID)
		typing.Stop()
		if err != nil {
			h.HandleError(ctx, msg.ChatID, err)
			return nil
		}
		open = openTodos(generated, view.Stage)
	}

	data, err := h.stateManager.GetStateData(ctx, msg.UserID)
	if err != nil {
		return err
	}
	data.ListedTodoIDs = make([]string, len(open))
	for i, t := range open {
		data.ListedTodoIDs[i] = t.ID
	}
	if err := h.stateManager.UpdateStateData(ctx, msg.UserID, data); err != nil {
		return err
	}

	h.sendMessage(ctx, msg.ChatID, render.RenderTodos(open), nil)
	return nil
}

func (h *CommandHandler) done(ctx context.Context, msg *Message, args string) error {
	projectID, ok, err := h.projectID(ctx, msg)
	if err != nil || !ok {
		return err
	}

	data, err := h.stateManager.GetStateData(ctx, msg.UserID)
	if err != nil {
		return err
	}

	n, convErr := strconv.Atoi(strings.TrimSpace(args))
	if convErr != nil || n < 1 || n > len(data.ListedTodoIDs) {
		h.sendMessage(ctx, msg.ChatID, render.MsgDoneUsage, nil)
		return nil
	}

	res, err := h.projectUC.CompleteTask(ctx, projectID, data.ListedTodoIDs[n-1])
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	var next *entity.StageView
	if res.Advanced {
		// numbering belonged to the finished stage
		data.ListedTodoIDs = nil
		if err := h.stateManager.UpdateStateData(ctx, msg.UserID, data); err != nil {
			return err
		}
		if next, err = h.projectUC.CurrentStage(ctx, projectID); err != nil {
			h.HandleError(ctx, msg.ChatID, err)
			return nil
		}
	}

	h.sendMessage(ctx, msg.ChatID, render.RenderTaskCompleted(res, next), nil)
	return nil
}

func (h *CommandHandler) plan(ctx context.Context, msg *Message) error {
	projectID, ok, err := h.projectID(ctx, msg)
	if err != nil || !ok {
		return err
	}

	res, err := h.projectUC.ExportPlan(ctx, projectID, entity.FormatPDF)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	return h.messageSender.SendDocument(ctx, msg.ChatID, res.Filename, res.Data, render.MsgPlanCaption)
}

// projectID returns the bound project, telling the user when there is none
func (h *CommandHandler) projectID(ctx context.Context, msg *Message) (string, bool, error) {
	chat, err := h.stateManager.GetChat(ctx, msg.UserID)
	if err != nil {
		return "", false, err
	}
	if chat.ProjectID == "" {
		h.sendMessage(ctx, msg.ChatID, render.MsgNoProject, nil)
		return "", false, nil
	}
	return chat.ProjectID, true, nil
}

func openTodos(todos []*entity.Todo, stage entity.StageKey) []*entity.Todo {
	var out []*entity.Todo
	for _, t := range todos {
		if !t.Completed && t.Stage == stage {
			out = append(out, t)
		}
	}
	return out
}

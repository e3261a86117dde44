package repository

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/futig/coach-backend/internal/entity"
)

func toPgUUID(id string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, err
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

func fromPgUUID(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

const projectColumns = `id, user_id, budget, memory, version, created_at, updated_at`

func scanProject(row pgx.Row) (*entity.Project, error) {
	var (
		id     pgtype.UUID
		memory []byte
		p      entity.Project
	)

	if err := row.Scan(&id, &p.UserID, &p.Budget, &memory, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(memory, &p.Memory); err != nil {
		return nil, fmt.Errorf("decode project memory: %w", err)
	}
	normalizeMemory(&p.Memory)
	p.ID = fromPgUUID(id)

	return &p, nil
}

// normalizeMemory replaces null collections so callers never see nil
func normalizeMemory(m *entity.ProjectMemory) {
	if m.CompletedStages == nil {
		m.CompletedStages = []entity.StageKey{}
	}
	if m.TasksInProgress == nil {
		m.TasksInProgress = []string{}
	}
	if m.Outputs == nil {
		m.Outputs = map[string]any{}
	}
	if m.Notes == nil {
		m.Notes = map[string]string{}
	}
}

const todoColumns = `id, project_id, stage, task, completed, created_at`

func scanTodo(row pgx.Row) (*entity.Todo, error) {
	var (
		id, projectID pgtype.UUID
		stage         string
		t             entity.Todo
	)

	if err := row.Scan(&id, &projectID, &stage, &t.Task, &t.Completed, &t.CreatedAt); err != nil {
		return nil, err
	}

	t.ID = fromPgUUID(id)
	t.ProjectID = fromPgUUID(projectID)
	t.Stage = entity.StageKey(stage)

	return &t, nil
}

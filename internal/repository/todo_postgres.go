package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/futig/coach-backend/internal/entity"
)

// TodoRepository stores generated tasks. Rows are never deleted or rewritten except for
// the completion flag.
type TodoRepository interface {
	Append(ctx context.Context, todos []entity.Todo) ([]*entity.Todo, error)
	Get(ctx context.Context, id string) (*entity.Todo, error)
	ListByProject(ctx context.Context, projectID string) ([]*entity.Todo, error)
	MarkCompleted(ctx context.Context, id string) (*entity.Todo, error)
}

var _ TodoRepository = &TodoPostgres{}

type TodoPostgres struct {
	db *pgxpool.Pool
}

func NewTodoPostgres(db *pgxpool.Pool) *TodoPostgres {
	return &TodoPostgres{db: db}
}

// Append inserts todos in order within one transaction
func (r *TodoPostgres) Append(ctx context.Context, todos []entity.Todo) ([]*entity.Todo, error) {
	if len(todos) == 0 {
		return []*entity.Todo{}, nil
	}

	batch := &pgx.Batch{}
	for _, t := range todos {
		id, err := toPgUUID(t.ID)
		if err != nil {
			return nil, fmt.Errorf("parse todo ID: %w", err)
		}
		projectID, err := toPgUUID(t.ProjectID)
		if err != nil {
			return nil, entity.ErrProjectNotFound
		}

		batch.Queue(`
			INSERT INTO todos (id, project_id, stage, task, completed)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+todoColumns,
			id, projectID, string(t.Stage), t.Task, t.Completed,
		)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	results := tx.SendBatch(ctx, batch)
	created := make([]*entity.Todo, 0, len(todos))
	for range todos {
		todo, err := scanTodo(results.QueryRow())
		if err != nil {
			results.Close()
			return nil, fmt.Errorf("append todo: %w", err)
		}
		created = append(created, todo)
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit todos: %w", err)
	}

	return created, nil
}

func (r *TodoPostgres) Get(ctx context.Context, id string) (*entity.Todo, error) {
	todoID, err := toPgUUID(id)
	if err != nil {
		return nil, entity.ErrTodoNotFound
	}

	todo, err := scanTodo(r.db.QueryRow(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, todoID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrTodoNotFound
		}
		return nil, fmt.Errorf("get todo: %w", err)
	}

	return todo, nil
}

func (r *TodoPostgres) ListByProject(ctx context.Context, projectID string) ([]*entity.Todo, error) {
	id, err := toPgUUID(projectID)
	if err != nil {
		return nil, entity.ErrProjectNotFound
	}

	rows, err := r.db.Query(ctx, `SELECT `+todoColumns+` FROM todos WHERE project_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]*entity.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	return todos, nil
}

// MarkCompleted sets the completion flag; completing a completed todo is a no-op
func (r *TodoPostgres) MarkCompleted(ctx context.Context, id string) (*entity.Todo, error) {
	todoID, err := toPgUUID(id)
	if err != nil {
		return nil, entity.ErrTodoNotFound
	}

	todo, err := scanTodo(r.db.QueryRow(ctx, `
		UPDATE todos SET completed = TRUE
		WHERE id = $1
		RETURNING `+todoColumns,
		todoID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrTodoNotFound
		}
		return nil, fmt.Errorf("complete todo: %w", err)
	}

	return todo, nil
}

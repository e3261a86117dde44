package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/futig/coach-backend/internal/entity"
)

// ProjectRepository defines the interface for project persistence
type ProjectRepository interface {
	Create(ctx context.Context, project entity.Project) (*entity.Project, error)
	Get(ctx context.Context, id string) (*entity.Project, error)
	// Update overwrites the whole project document if it is still at project.Version and
	// fails with entity.ErrProjectConflict otherwise
	Update(ctx context.Context, project *entity.Project) (*entity.Project, error)
}

var _ ProjectRepository = &ProjectPostgres{}

// ProjectPostgres stores projects with their memory as one JSONB document
type ProjectPostgres struct {
	db *pgxpool.Pool
}

func NewProjectPostgres(db *pgxpool.Pool) *ProjectPostgres {
	return &ProjectPostgres{db: db}
}

func (r *ProjectPostgres) Create(ctx context.Context, project entity.Project) (*entity.Project, error) {
	projectID, err := toPgUUID(project.ID)
	if err != nil {
		return nil, fmt.Errorf("parse project ID: %w", err)
	}

	memory, err := json.Marshal(project.Memory)
	if err != nil {
		return nil, fmt.Errorf("encode project memory: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO projects (id, user_id, budget, memory)
		VALUES ($1, $2, $3, $4)
		RETURNING `+projectColumns,
		projectID, project.UserID, project.Budget, memory,
	)

	result, err := scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	return result, nil
}

func (r *ProjectPostgres) Get(ctx context.Context, id string) (*entity.Project, error) {
	projectID, err := toPgUUID(id)
	if err != nil {
		// a malformed id cannot name a stored project
		return nil, entity.ErrProjectNotFound
	}

	row := r.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, projectID)

	result, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	return result, nil
}

func (r *ProjectPostgres) Update(ctx context.Context, project *entity.Project) (*entity.Project, error) {
	projectID, err := toPgUUID(project.ID)
	if err != nil {
		return nil, entity.ErrProjectNotFound
	}

	memory, err := json.Marshal(project.Memory)
	if err != nil {
		return nil, fmt.Errorf("encode project memory: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		UPDATE projects
		SET budget = $2, memory = $3, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $4
		RETURNING `+projectColumns,
		projectID, project.Budget, memory, project.Version,
	)

	result, err := scanProject(row)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update project: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, projectID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check project: %w", err)
	}
	if exists {
		return nil, entity.ErrProjectConflict
	}
	return nil, entity.ErrProjectNotFound
}

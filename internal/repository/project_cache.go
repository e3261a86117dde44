package repository

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/futig/coach-backend/internal/entity"
)

var _ ProjectRepository = &CachedProjectRepository{}

// CachedProjectRepository keeps recently read projects in memory. It stores and returns
// copies, so callers may mutate what they get.
type CachedProjectRepository struct {
	next  ProjectRepository
	cache *cache.Cache
}

func NewCachedProjectRepository(next ProjectRepository, ttl, cleanupInterval time.Duration) *CachedProjectRepository {
	return &CachedProjectRepository{
		next:  next,
		cache: cache.New(ttl, cleanupInterval),
	}
}

func (r *CachedProjectRepository) Create(ctx context.Context, project entity.Project) (*entity.Project, error) {
	created, err := r.next.Create(ctx, project)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(created.ID, created.Clone())
	return created, nil
}

func (r *CachedProjectRepository) Get(ctx context.Context, id string) (*entity.Project, error) {
	if cached, ok := r.cache.Get(id); ok {
		return cached.(*entity.Project).Clone(), nil
	}

	project, err := r.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(id, project.Clone())
	return project, nil
}

func (r *CachedProjectRepository) Update(ctx context.Context, project *entity.Project) (*entity.Project, error) {
	updated, err := r.next.Update(ctx, project)
	if err != nil {
		// the stored document is unknown now
		r.cache.Delete(project.ID)
		return nil, err
	}
	r.cache.SetDefault(updated.ID, updated.Clone())
	return updated, nil
}

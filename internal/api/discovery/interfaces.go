package discovery

import (
	"context"

	"github.com/futig/coach-backend/internal/entity"
)

type DiscoveryUsecase interface {
	Start(ctx context.Context, userID, input string) (*entity.DiscoveryReply, error)
	Answer(ctx context.Context, userID, rawAnswer string) (*entity.DiscoveryReply, error)
	Recommendation(ctx context.Context, userID string) (*entity.RecommendationDTO, error)
	Reset(ctx context.Context, userID string) error
}

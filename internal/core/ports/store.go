package ports

import (
	"context"

	"github.com/melih/drydock/internal/core/domain"
)

// BuildStore persists build history.
type BuildStore interface {
	SaveBuild(ctx context.Context, rec *domain.BuildRecord) error
	ListBuilds(ctx context.Context, limit int) ([]domain.BuildRecord, error)
}

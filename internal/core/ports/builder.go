package ports

import (
	"context"

	"github.com/melih/drydock/internal/core/domain"
)

// BuildRequest describes one image assembly: where the build context comes
// from (a local directory or a git repository, exactly one of the two) and
// the recipe to assemble. A nil Recipe means the recipe file inside the
// context is parsed instead.
type BuildRequest struct {
	ContextDir string
	RepoURL    string
	ImageName  string
	Recipe     *domain.Recipe
	RecipeFile string
}

// BuilderService defines operations for assembling container images from a
// build recipe and a build context.
type BuilderService interface {
	// Build stages the context, assembles the image and records the outcome.
	// The returned record is non-nil whether the build succeeded or failed;
	// the error is non-nil exactly when the record's status is failed.
	Build(ctx context.Context, req BuildRequest) (*domain.BuildRecord, error)
}

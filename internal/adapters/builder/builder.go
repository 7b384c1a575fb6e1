package builder

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/go-git/go-git/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/melih/drydock/internal/core/domain"
	"github.com/melih/drydock/internal/core/ports"
	"github.com/melih/drydock/internal/recipe"
)

// Adapter implements ports.BuilderService using the Docker daemon build API.
type Adapter struct {
	cli    *client.Client
	store  ports.BuildStore
	logger *logrus.Logger
}

// NewAdapter creates a builder adapter. The store may be nil, in which case
// builds are not recorded.
func NewAdapter(store ports.BuildStore, logger *logrus.Logger) (*Adapter, error) {
	if logger == nil {
		logger = logrus.New()
	}
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli, store: store, logger: logger}, nil
}

// Build stages the build context, resolves the recipe, assembles the image
// and records the outcome. Failures from the daemon (base image unreachable,
// context unreadable) are surfaced as-is; nothing here retries or recovers.
func (a *Adapter) Build(ctx context.Context, req ports.BuildRequest) (*domain.BuildRecord, error) {
	rec := &domain.BuildRecord{
		ID:        uuid.NewString(),
		ImageName: req.ImageName,
		StartedAt: time.Now().UTC(),
	}

	err := a.build(ctx, req, rec)
	rec.DurationMs = time.Since(rec.StartedAt).Milliseconds()
	if err != nil {
		rec.Status = domain.BuildStatusFailed
		rec.Error = err.Error()
	} else {
		rec.Status = domain.BuildStatusSucceeded
	}

	if a.store != nil {
		if saveErr := a.store.SaveBuild(ctx, rec); saveErr != nil {
			a.logger.WithError(saveErr).Warn("Failed to record build in history")
		}
	}
	return rec, err
}

func (a *Adapter) build(ctx context.Context, req ports.BuildRequest, rec *domain.BuildRecord) error {
	if req.ImageName == "" {
		return fmt.Errorf("image name is required")
	}

	if req.RepoURL != "" {
		rec.ContextDir = req.RepoURL
	} else {
		rec.ContextDir = req.ContextDir
	}

	stageDir, cleanup, err := a.stageContext(ctx, req)
	if err != nil {
		return err
	}
	defer cleanup()

	r := req.Recipe
	if r == nil {
		r, err = loadRecipe(stageDir, req.RecipeFile)
		if err != nil {
			return err
		}
	}
	if err := recipe.Validate(r); err != nil {
		return fmt.Errorf("invalid recipe: %w", err)
	}
	rec.BaseImage = r.BaseImage

	// The record is the source of truth; the daemon build consumes its
	// rendered serialization.
	rendered := recipe.Render(r)
	if err := os.WriteFile(filepath.Join(stageDir, recipe.DefaultRecipeFile), []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("failed to write rendered recipe: %w", err)
	}

	a.lintEntrypoint(r, stageDir)

	excludes, err := readIgnorePatterns(stageDir)
	if err != nil {
		return err
	}
	tar, err := archive.TarWithOptions(stageDir, &archive.TarOptions{ExcludePatterns: excludes})
	if err != nil {
		return fmt.Errorf("failed to create build context: %w", err)
	}
	defer tar.Close()

	a.logger.WithFields(logrus.Fields{
		"image": req.ImageName,
		"base":  r.BaseImage,
	}).Info("Building image")

	resp, err := a.cli.ImageBuild(ctx, tar, types.ImageBuildOptions{
		Tags:       []string{req.ImageName},
		Dockerfile: recipe.DefaultRecipeFile,
		Remove:     true, // Remove intermediate containers
	})
	if err != nil {
		return fmt.Errorf("failed to build image: %w", err)
	}
	defer resp.Body.Close()

	// Drain the build stream; daemon-side failures arrive as error messages
	// in the stream, not as an ImageBuild error.
	if err := jsonmessage.DisplayJSONMessagesStream(resp.Body, io.Discard, 0, false, nil); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	a.logger.WithField("image", req.ImageName).Info("Image built")
	return nil
}

// stageContext materializes the build context: a shallow git clone when a
// repository URL is given, otherwise a verbatim copy of the local directory.
func (a *Adapter) stageContext(ctx context.Context, req ports.BuildRequest) (string, func(), error) {
	if req.RepoURL != "" && req.ContextDir != "" {
		return "", nil, fmt.Errorf("context directory and repository URL are mutually exclusive")
	}

	tmpDir, err := os.MkdirTemp("", "drydock-build-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create staging dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(tmpDir) }

	switch {
	case req.RepoURL != "":
		a.logger.WithField("repo", req.RepoURL).Info("Cloning build context")
		_, err = git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{
			URL:   req.RepoURL,
			Depth: 1, // Shallow clone for speed
		})
		if err != nil {
			cleanup()
			return "", nil, fmt.Errorf("failed to clone repo: %w", err)
		}
	case req.ContextDir != "":
		if err := copyTree(req.ContextDir, tmpDir); err != nil {
			cleanup()
			return "", nil, fmt.Errorf("failed to stage build context: %w", err)
		}
	default:
		cleanup()
		return "", nil, fmt.Errorf("either a context directory or a repository URL is required")
	}

	return tmpDir, cleanup, nil
}

func loadRecipe(stageDir, recipeFile string) (*domain.Recipe, error) {
	if recipeFile == "" {
		recipeFile = recipe.DefaultRecipeFile
	}
	content, err := os.ReadFile(filepath.Join(stageDir, recipeFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe file %s: %w", recipeFile, err)
	}
	r, err := recipe.Parse(string(content))
	if err != nil {
		return nil, err
	}
	return r, nil
}

// lintEntrypoint warns when the startup command names a context-relative
// file that is missing or ignored. The build proceeds regardless: the copy
// set is verbatim, and a missing entry point only fails container start.
func (a *Adapter) lintEntrypoint(r *domain.Recipe, stageDir string) {
	file := recipe.EntrypointFile(r)
	if file == "" {
		return
	}
	missing, err := entrypointMissing(stageDir, file)
	if err != nil {
		a.logger.WithError(err).Debug("Skipping entry point check")
		return
	}
	if missing {
		a.logger.WithField("file", file).Warn("Startup command names a file absent from the build context; container start will fail")
	}
}

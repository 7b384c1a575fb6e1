package ports

import (
	"context"
	"io"

	"github.com/melih/drydock/internal/core/domain"
)

// ContainerService defines the core operations for launching and managing
// containers. This interface allows us to switch between Docker, Podman, or
// Kubernetes without changing the business logic.
type ContainerService interface {
	ListContainers(ctx context.Context) ([]domain.Container, error)
	// LaunchContainer creates and starts one container from an image. The
	// image's built-in environment defaults apply unless overridden in opts.
	LaunchContainer(ctx context.Context, image string, opts domain.LaunchOptions) (string, error)
	StopContainer(ctx context.Context, id string) error
	GetContainerLogs(ctx context.Context, id string) (io.ReadCloser, error)
	// InspectEnv returns the effective environment of a created container.
	InspectEnv(ctx context.Context, id string) ([]string, error)
	// DeclaredPorts returns the ports an image's metadata marks as exposed.
	DeclaredPorts(ctx context.Context, image string) ([]int, error)
}

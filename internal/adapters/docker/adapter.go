package docker

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/sirupsen/logrus"

	"github.com/melih/drydock/internal/core/domain"
)

// Adapter implements ports.ContainerService using the Docker SDK.
type Adapter struct {
	cli    *client.Client
	logger *logrus.Logger
}

// NewAdapter creates a new Docker adapter instance.
func NewAdapter(logger *logrus.Logger) (*Adapter, error) {
	if logger == nil {
		logger = logrus.New()
	}
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli, logger: logger}, nil
}

// ListContainers returns running containers with details.
func (a *Adapter) ListContainers(ctx context.Context) ([]domain.Container, error) {
	containers, err := a.cli.ContainerList(ctx, types.ContainerListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	var result []domain.Container
	for _, c := range containers {
		// Use the first name if available, remove slash
		name := ""
		if len(c.Names) > 0 {
			name = c.Names[0][1:]
		}

		ip := ""
		if c.NetworkSettings != nil {
			for _, netw := range c.NetworkSettings.Networks {
				if netw.IPAddress != "" {
					ip = netw.IPAddress
					break
				}
			}
		}

		result = append(result, domain.Container{
			ID:        c.ID[:12], // Short ID
			Name:      name,
			Image:     c.Image,
			Status:    c.Status,
			State:     c.State,
			IPAddress: ip,
		})
	}
	return result, nil
}

// LaunchContainer creates and starts one container from an image. The
// container's main process is whatever the image config declares; if it
// exits, the container's lifecycle ends; no supervision, no restart. Env
// overrides are layered on top of the image's built-in defaults by the
// daemon, overrides winning.
func (a *Adapter) LaunchContainer(ctx context.Context, image string, opts domain.LaunchOptions) (string, error) {
	if err := a.ensureImage(ctx, image); err != nil {
		return "", err
	}

	resp, err := a.cli.ContainerCreate(ctx, &container.Config{
		Image: image,
		Env:   EnvStrings(opts.EnvOverrides),
	}, nil, nil, nil, opts.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}

	if err := a.cli.ContainerStart(ctx, resp.ID, types.ContainerStartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start container: %w", err)
	}

	a.logger.WithFields(logrus.Fields{
		"container_id": resp.ID[:12],
		"image":        image,
	}).Info("Container started")
	return resp.ID, nil
}

// ensureImage pulls the image only when the daemon does not already have it.
// Locally assembled images are never in a registry, so an unconditional pull
// would fail for exactly the images this tool produces.
func (a *Adapter) ensureImage(ctx context.Context, image string) error {
	_, _, err := a.cli.ImageInspectWithRaw(ctx, image)
	if err == nil {
		return nil
	}
	if !client.IsErrNotFound(err) {
		return fmt.Errorf("failed to inspect image: %w", err)
	}

	a.logger.WithField("image", image).Info("Pulling image")
	reader, err := a.cli.ImagePull(ctx, image, types.ImagePullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image: %w", err)
	}
	defer reader.Close()
	if err := jsonmessage.DisplayJSONMessagesStream(reader, io.Discard, 0, false, nil); err != nil {
		return fmt.Errorf("pull failed: %w", err)
	}
	return nil
}

// StopContainer stops a running container.
func (a *Adapter) StopContainer(ctx context.Context, id string) error {
	// Timeout can be configurable, but keeping it simple for now
	timeout := 10 * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return a.cli.ContainerStop(ctx, id, container.StopOptions{})
}

// GetContainerLogs returns a stream of container logs.
func (a *Adapter) GetContainerLogs(ctx context.Context, id string) (io.ReadCloser, error) {
	options := types.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     false, // Can be true for streaming
		Timestamps: true,
	}
	return a.cli.ContainerLogs(ctx, id, options)
}

// InspectEnv returns the effective environment of a container: the image's
// built-in defaults with the container's launch-time entries layered on top.
func (a *Adapter) InspectEnv(ctx context.Context, id string) ([]string, error) {
	inspect, err := a.cli.ContainerInspect(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect container: %w", err)
	}

	var defaults []string
	if inspect.Image != "" {
		img, _, err := a.cli.ImageInspectWithRaw(ctx, inspect.Image)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect image: %w", err)
		}
		if img.Config != nil {
			defaults = img.Config.Env
		}
	}

	var overrides []string
	if inspect.Config != nil {
		overrides = inspect.Config.Env
	}
	return MergeEnv(defaults, overrides), nil
}

// DeclaredPorts returns the ports an image's metadata records as exposed.
// This is intent only: nothing guarantees the process binds them.
func (a *Adapter) DeclaredPorts(ctx context.Context, image string) ([]int, error) {
	img, _, err := a.cli.ImageInspectWithRaw(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect image: %w", err)
	}
	if img.Config == nil {
		return nil, nil
	}

	var ports []int
	for p := range img.Config.ExposedPorts {
		ports = append(ports, p.Int())
	}
	sort.Ints(ports)
	return ports, nil
}

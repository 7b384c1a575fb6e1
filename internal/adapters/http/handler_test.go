package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/melih/drydock/internal/core/domain"
	"github.com/melih/drydock/internal/core/ports"
)

type mockContainerService struct {
	mock.Mock
}

func (m *mockContainerService) ListContainers(ctx context.Context) ([]domain.Container, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Container), args.Error(1)
}

func (m *mockContainerService) LaunchContainer(ctx context.Context, image string, opts domain.LaunchOptions) (string, error) {
	args := m.Called(ctx, image, opts)
	return args.String(0), args.Error(1)
}

func (m *mockContainerService) StopContainer(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockContainerService) GetContainerLogs(ctx context.Context, id string) (io.ReadCloser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *mockContainerService) InspectEnv(ctx context.Context, id string) ([]string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockContainerService) DeclaredPorts(ctx context.Context, image string) ([]int, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

type mockBuilderService struct {
	mock.Mock
}

func (m *mockBuilderService) Build(ctx context.Context, req ports.BuildRequest) (*domain.BuildRecord, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BuildRecord), args.Error(1)
}

type mockBuildStore struct {
	mock.Mock
}

func (m *mockBuildStore) SaveBuild(ctx context.Context, rec *domain.BuildRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockBuildStore) ListBuilds(ctx context.Context, limit int) ([]domain.BuildRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BuildRecord), args.Error(1)
}

func setupApp(containers *mockContainerService, builder *mockBuilderService, store *mockBuildStore) *fiber.App {
	app := fiber.New()
	NewHandler(containers, builder, store).Register(app)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (int, []byte) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestLaunchContainer(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		containers := new(mockContainerService)
		containers.On("LaunchContainer", mock.Anything, "app:latest", domain.LaunchOptions{
			Name:         "bot",
			EnvOverrides: map[string]string{"NAME": "Other"},
		}).Return("abc123", nil)

		app := setupApp(containers, new(mockBuilderService), new(mockBuildStore))
		code, data := postJSON(t, app, "/api/v1/containers/", LaunchContainerRequest{
			Image: "app:latest",
			Name:  "bot",
			Env:   map[string]string{"NAME": "Other"},
		})

		assert.Equal(t, fiber.StatusCreated, code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(data, &body))
		assert.Equal(t, "abc123", body["id"])
		containers.AssertExpectations(t)
	})

	t.Run("MissingImage", func(t *testing.T) {
		app := setupApp(new(mockContainerService), new(mockBuilderService), new(mockBuildStore))
		code, _ := postJSON(t, app, "/api/v1/containers/", LaunchContainerRequest{})
		assert.Equal(t, fiber.StatusBadRequest, code)
	})
}

func TestListContainers(t *testing.T) {
	containers := new(mockContainerService)
	containers.On("ListContainers", mock.Anything).Return([]domain.Container{
		{ID: "abc123", Name: "bot", Image: "app:latest", State: "running"},
	}, nil)

	app := setupApp(containers, new(mockBuilderService), new(mockBuildStore))
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/containers/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got []domain.Container
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "bot", got[0].Name)
}

func TestStartBuild(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		builder := new(mockBuilderService)
		builder.On("Build", mock.Anything, ports.BuildRequest{
			ContextDir: "/tmp/ctx",
			ImageName:  "app:latest",
		}).Return(&domain.BuildRecord{ID: "b1", ImageName: "app:latest", Status: domain.BuildStatusSucceeded}, nil)

		app := setupApp(new(mockContainerService), builder, new(mockBuildStore))
		code, data := postJSON(t, app, "/api/v1/builds/", StartBuildRequest{ContextDir: "/tmp/ctx", Image: "app:latest"})

		assert.Equal(t, fiber.StatusCreated, code)
		var got domain.BuildRecord
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, domain.BuildStatusSucceeded, got.Status)
		builder.AssertExpectations(t)
	})

	t.Run("MissingContext", func(t *testing.T) {
		app := setupApp(new(mockContainerService), new(mockBuilderService), new(mockBuildStore))
		code, _ := postJSON(t, app, "/api/v1/builds/", StartBuildRequest{Image: "app:latest"})
		assert.Equal(t, fiber.StatusBadRequest, code)
	})

	t.Run("BuildFailure", func(t *testing.T) {
		builder := new(mockBuilderService)
		builder.On("Build", mock.Anything, mock.Anything).
			Return(&domain.BuildRecord{ID: "b2", Status: domain.BuildStatusFailed}, assert.AnError)

		app := setupApp(new(mockContainerService), builder, new(mockBuildStore))
		code, _ := postJSON(t, app, "/api/v1/builds/", StartBuildRequest{ContextDir: "/tmp/ctx", Image: "app:latest"})
		assert.Equal(t, fiber.StatusInternalServerError, code)
	})
}

func TestListBuilds(t *testing.T) {
	store := new(mockBuildStore)
	store.On("ListBuilds", mock.Anything, 20).Return([]domain.BuildRecord{{ID: "b1"}}, nil)

	app := setupApp(new(mockContainerService), new(mockBuilderService), store)
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/builds/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGetContainerLogs(t *testing.T) {
	containers := new(mockContainerService)
	containers.On("GetContainerLogs", mock.Anything, "abc123").
		Return(io.NopCloser(strings.NewReader("hello\n")), nil)

	app := setupApp(containers, new(mockBuilderService), new(mockBuildStore))
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/containers/abc123/logs", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(body))
}

func TestGetContainerEnv(t *testing.T) {
	containers := new(mockContainerService)
	containers.On("InspectEnv", mock.Anything, "abc123").
		Return([]string{"NAME=Other"}, nil)

	app := setupApp(containers, new(mockBuilderService), new(mockBuildStore))
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/containers/abc123/env", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, []string{"NAME=Other"}, got["env"])
}

func TestGetDeclaredPorts(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		containers := new(mockContainerService)
		containers.On("DeclaredPorts", mock.Anything, "app:latest").Return([]int{8080}, nil)

		app := setupApp(containers, new(mockBuilderService), new(mockBuildStore))
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/images/ports?image=app:latest", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("MissingImage", func(t *testing.T) {
		app := setupApp(new(mockContainerService), new(mockBuilderService), new(mockBuildStore))
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/images/ports", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestStopContainer(t *testing.T) {
	containers := new(mockContainerService)
	containers.On("StopContainer", mock.Anything, "abc123").Return(nil)

	app := setupApp(containers, new(mockBuilderService), new(mockBuildStore))
	resp, err := app.Test(httptest.NewRequest("DELETE", "/api/v1/containers/abc123", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	containers.AssertExpectations(t)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/melih/drydock/internal/core/domain"
	"github.com/melih/drydock/internal/core/ports"
)

// Handler exposes the assembler and launcher over HTTP.
type Handler struct {
	containers ports.ContainerService
	builder    ports.BuilderService
	store      ports.BuildStore
}

func NewHandler(containers ports.ContainerService, builder ports.BuilderService, store ports.BuildStore) *Handler {
	return &Handler{containers: containers, builder: builder, store: store}
}

// Register wires all routes under /api/v1.
func (h *Handler) Register(app *fiber.App) {
	v1 := app.Group("/api").Group("/v1")

	builds := v1.Group("/builds")
	builds.Post("/", h.StartBuild)
	builds.Get("/", h.ListBuilds)

	containers := v1.Group("/containers")
	containers.Get("/", h.ListContainers)
	containers.Post("/", h.LaunchContainer)
	containers.Delete("/:id", h.StopContainer)
	containers.Get("/:id/logs", h.GetContainerLogs)
	containers.Get("/:id/env", h.GetContainerEnv)

	v1.Get("/images/ports", h.GetDeclaredPorts)
}

type StartBuildRequest struct {
	ContextDir string `json:"context_dir"`
	RepoURL    string `json:"repo_url"`
	Image      string `json:"image"`
	RecipeFile string `json:"recipe_file"`
}

func (h *Handler) StartBuild(c *fiber.Ctx) error {
	var req StartBuildRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Image == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image name is required",
		})
	}
	if req.ContextDir == "" && req.RepoURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Context directory or repo URL is required",
		})
	}

	// Note: this is a blocking operation and might take time!
	rec, err := h.builder.Build(c.Context(), ports.BuildRequest{
		ContextDir: req.ContextDir,
		RepoURL:    req.RepoURL,
		ImageName:  req.Image,
		RecipeFile: req.RecipeFile,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Build failed: " + err.Error(),
			"build": rec,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (h *Handler) ListBuilds(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	records, err := h.store.ListBuilds(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(records)
}

func (h *Handler) ListContainers(c *fiber.Ctx) error {
	containers, err := h.containers.ListContainers(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(containers)
}

type LaunchContainerRequest struct {
	Image string            `json:"image"`
	Name  string            `json:"name"`
	Env   map[string]string `json:"env"`
}

func (h *Handler) LaunchContainer(c *fiber.Ctx) error {
	var req LaunchContainerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Image == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image name is required",
		})
	}

	id, err := h.containers.LaunchContainer(c.Context(), req.Image, domain.LaunchOptions{
		Name:         req.Name,
		EnvOverrides: req.Env,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    id,
		"image": req.Image,
	})
}

func (h *Handler) StopContainer(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Container ID is required",
		})
	}

	if err := h.containers.StopContainer(c.Context(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusOK)
}

func (h *Handler) GetContainerLogs(c *fiber.Ctx) error {
	id := c.Params("id")
	logs, err := h.containers.GetContainerLogs(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set("Content-Type", "text/plain")
	return c.SendStream(logs)
}

func (h *Handler) GetContainerEnv(c *fiber.Ctx) error {
	id := c.Params("id")
	env, err := h.containers.InspectEnv(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"env": env})
}

func (h *Handler) GetDeclaredPorts(c *fiber.Ctx) error {
	image := c.Query("image")
	if image == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image name is required",
		})
	}
	declared, err := h.containers.DeclaredPorts(c.Context(), image)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"image": image, "exposed_ports": declared})
}

// Package web provides HTTP handlers and REST API endpoints for blueprint operations.
package web

import (
	"net/http"
	"time"

	"github.com/dukex/blueprint/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	blueprint *services.Blueprint
	validator *validator.Validate
}

func NewAPIHandlers(
	blueprint *services.Blueprint,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		blueprint: blueprint,
		validator: validator,
	}
}

// Register mounts every blueprint route on router.
func (h *APIHandlers) Register(router fiber.Router) {
	router.Get("/health", h.HealthCheck)
	router.Get("/platforms", h.ListPlatforms)

	p := router.Group("/platforms/:platform")
	p.Post("/validate", h.Validate)
	p.Post("/autofix", h.AutoFix)
	p.Post("/import", h.Import)
	p.Get("/modules", h.SearchModules)
	p.Get("/categories", h.Categories)

	router.Post("/convert", h.Convert)
	router.Post("/sanitize", h.Sanitize)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	catalogCheck, ok := h.blueprint.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Blueprint API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if ok {
		status = "healthy"
		message = "Blueprint API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"catalogs": catalogCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) ListPlatforms(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"platforms": h.blueprint.Platforms(),
	})
}

func (h *APIHandlers) Validate(c fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return badRequest(c, "Request body is required")
	}

	result, err := h.blueprint.Validate(c.Context(), c.Params("platform"), body)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) AutoFix(c fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return badRequest(c, "Request body is required")
	}

	result, err := h.blueprint.AutoFix(c.Context(), c.Params("platform"), body)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) Import(c fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return badRequest(c, "Request body is required")
	}

	def, err := h.blueprint.Import(c.Context(), c.Params("platform"), body)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(def)
}

func (h *APIHandlers) Convert(c fiber.Ctx) error {
	var req ConvertRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.blueprint.Convert(c.Context(), req.From, req.To, req.Document)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) Sanitize(c fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return badRequest(c, "Request body is required")
	}

	out, err := h.blueprint.Sanitize(c.Context(), body)
	if err != nil {
		return handleServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	return c.Send(out)
}

func (h *APIHandlers) SearchModules(c fiber.Ctx) error {
	platformName := c.Params("platform")

	entries, err := h.blueprint.SearchModules(c.Context(), platformName, c.Query("q"), c.Query("category"))
	if err != nil {
		return handleServiceError(c, err)
	}

	modules := make([]ModuleResponse, 0, len(entries))
	for _, e := range entries {
		modules = append(modules, TransformModuleResponse(e))
	}

	return c.JSON(ModuleListResponse{
		Platform: platformName,
		Modules:  modules,
		Count:    len(modules),
	})
}

func (h *APIHandlers) Categories(c fiber.Ctx) error {
	categories, err := h.blueprint.Categories(c.Context(), c.Params("platform"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"categories": categories,
	})
}

// Package main provides the Blueprint API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/blueprint/pkg/services"
	"github.com/dukex/blueprint/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// maxBodySize bounds uploaded blueprint documents.
const maxBodySize = 8 * 1024 * 1024

type API struct {
	logger    *slog.Logger
	blueprint *services.Blueprint
	validate  *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	blueprint *services.Blueprint,
) *API {
	return &API{
		logger:    logger,
		blueprint: blueprint,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.blueprint, a.validate)

	app := fiber.New(fiber.Config{
		BodyLimit: maxBodySize,
	})
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			_, ok := a.blueprint.HealthCheck(c.Context())

			return ok
		},
	}))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Blueprint API")
	})

	handlers.Register(app)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	a.logger.Info("Blueprint API listening", "port", port)

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}

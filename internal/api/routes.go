// Package api mounts the HTTP and WebSocket surface of the comparison service.
package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/seo-compare/backend/internal/api/handlers"
	"github.com/seo-compare/backend/internal/comparison"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Service *comparison.Service
	// Checks are consulted by /ready; any error marks the service unready.
	Checks map[string]Pinger
}

func RegisterRoutes(router fiber.Router, opts Options) {
	comparisonHandler := handlers.NewComparisonHandler(opts.Service)
	snapshotHandler := handlers.NewSnapshotHandler(opts.Service)
	wsHandler := handlers.NewWebSocketHandler(opts.Service)

	router.Post("/snapshots", snapshotHandler.CreateSnapshot)
	router.Get("/snapshots", snapshotHandler.ListSnapshots)
	router.Get("/snapshots/:id", snapshotHandler.GetSnapshot)
	router.Delete("/snapshots/:id", snapshotHandler.DeleteSnapshot)

	router.Post("/comparisons/keywords", comparisonHandler.CompareKeywords)
	router.Post("/comparisons/directories", comparisonHandler.CompareDirectories)
	router.Get("/comparisons/history", comparisonHandler.GetHistory)

	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws", websocket.New(wsHandler.HandleConnection))

	router.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	router.Get("/ready", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		failing := fiber.Map{}
		for name, check := range opts.Checks {
			if err := check.Ping(ctx); err != nil {
				failing[name] = err.Error()
			}
		}
		if len(failing) > 0 {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
				"checks": failing,
			})
		}

		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})
}

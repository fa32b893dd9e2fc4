package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seo-compare/backend/internal/compare"
	"github.com/seo-compare/backend/internal/comparison"
	"github.com/seo-compare/backend/internal/storage/sqlite"
	"github.com/seo-compare/backend/pkg/logger"
)

func respondError(c *fiber.Ctx, err error, msg string) error {
	switch {
	case errors.Is(err, compare.ErrInvalidParameter), errors.Is(err, comparison.ErrInvalidSnapshot):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, sqlite.ErrSnapshotNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Snapshot not found",
		})
	}

	logger.Error(msg, zap.Error(err), zap.String("path", c.Path()))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": msg,
	})
}

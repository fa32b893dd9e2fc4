package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seo-compare/backend/internal/comparison"
	"github.com/seo-compare/backend/pkg/logger"
)

type SnapshotHandler struct {
	service *comparison.Service
}

func NewSnapshotHandler(service *comparison.Service) *SnapshotHandler {
	return &SnapshotHandler{
		service: service,
	}
}

func (h *SnapshotHandler) CreateSnapshot(c *fiber.Ctx) error {
	var req comparison.IngestRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	snap, err := h.service.Ingest(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, "Failed to store snapshot")
	}

	logger.Info("Snapshot ingested",
		zap.String("snapshot_id", snap.ID),
		zap.String("property", snap.PropertyURL),
		zap.Int("rows", snap.RowCount),
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":        snap.ID,
		"rowCount":  snap.RowCount,
		"totals":    snap.Totals,
		"createdAt": snap.CreatedAt,
	})
}

func (h *SnapshotHandler) ListSnapshots(c *fiber.Ctx) error {
	snapshots, err := h.service.ListSnapshots(c.UserContext(), c.Query("property"), c.QueryInt("limit", 100))
	if err != nil {
		return respondError(c, err, "Failed to list snapshots")
	}

	return c.JSON(fiber.Map{
		"snapshots": snapshots,
	})
}

func (h *SnapshotHandler) GetSnapshot(c *fiber.Ctx) error {
	snap, err := h.service.GetSnapshot(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to load snapshot")
	}

	return c.JSON(snap)
}

func (h *SnapshotHandler) DeleteSnapshot(c *fiber.Ctx) error {
	if err := h.service.DeleteSnapshot(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "Failed to delete snapshot")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seo-compare/backend/internal/comparison"
	"github.com/seo-compare/backend/pkg/logger"
)

type ComparisonHandler struct {
	service *comparison.Service
}

func NewComparisonHandler(service *comparison.Service) *ComparisonHandler {
	return &ComparisonHandler{
		service: service,
	}
}

type comparisonRequest struct {
	SnapshotA string `json:"snapshotA"`
	SnapshotB string `json:"snapshotB"`
	comparison.Overrides
}

func (h *ComparisonHandler) CompareKeywords(c *fiber.Ctx) error {
	return h.handle(c, comparison.KindKeywords)
}

func (h *ComparisonHandler) CompareDirectories(c *fiber.Ctx) error {
	return h.handle(c, comparison.KindDirectories)
}

func (h *ComparisonHandler) handle(c *fiber.Ctx, kind comparison.Kind) error {
	var req comparisonRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.SnapshotA == "" || req.SnapshotB == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "snapshotA and snapshotB are required",
		})
	}

	response, err := h.service.Compare(c.UserContext(), comparison.Request{
		SnapshotA: req.SnapshotA,
		SnapshotB: req.SnapshotB,
		Kind:      kind,
		Params:    req.Apply(h.service.Defaults()),
	})
	if err != nil {
		return respondError(c, err, "Failed to process comparison")
	}

	return c.JSON(response)
}

func (h *ComparisonHandler) GetHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	history, err := h.service.History(c.UserContext(), limit)
	if err != nil {
		return respondError(c, err, "Failed to load comparison history")
	}

	return c.JSON(fiber.Map{
		"history": history,
	})
}

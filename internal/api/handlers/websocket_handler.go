package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/seo-compare/backend/internal/compare"
	"github.com/seo-compare/backend/internal/comparison"
	"github.com/seo-compare/backend/pkg/config"
	"github.com/seo-compare/backend/pkg/logger"
)

const wsComparisonTimeout = 30 * time.Second

type WebSocketHandler struct {
	service *comparison.Service
}

func NewWebSocketHandler(service *comparison.Service) *WebSocketHandler {
	return &WebSocketHandler{
		service: service,
	}
}

// wsMessage selects snapshots with "compare" and adjusts parameters with "params".
// Either re-runs the comparison with the accumulated session state.
type wsMessage struct {
	Type      string          `json:"type"`
	Kind      comparison.Kind `json:"kind"`
	SnapshotA string          `json:"snapshotA"`
	SnapshotB string          `json:"snapshotB"`
	comparison.Overrides
}

type wsSession struct {
	kind      comparison.Kind
	snapshotA string
	snapshotB string
	params    compare.Params
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	session := &wsSession{
		kind:   comparison.KindDirectories,
		params: h.service.Defaults(),
	}

	for {
		var msg wsMessage

		err := c.ReadJSON(&msg)
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Error("Failed to read WebSocket message", zap.Error(err))
			}
			break
		}

		if err := session.apply(msg); err != nil {
			h.sendError(c, err.Error())
			continue
		}

		if session.snapshotA == "" || session.snapshotB == "" {
			h.sendError(c, "select snapshots with a compare message first")
			continue
		}

		logger.Debug("Processing WebSocket comparison",
			zap.String("kind", string(session.kind)),
			zap.String("snapshot_a", session.snapshotA),
			zap.String("snapshot_b", session.snapshotB),
		)

		if err := h.sendComparison(c, session); err != nil {
			logger.Error("Failed to send comparison", zap.Error(err))
			break
		}
	}
}

func (s *wsSession) apply(msg wsMessage) error {
	if msg.Type != "compare" && msg.Type != "params" {
		return errors.New("unknown message type " + msg.Type)
	}

	next := msg.Apply(s.params)
	if err := next.Validate(); err != nil {
		return err
	}
	if err := config.ValidateMinSimilarity(next.MinSimilarity); err != nil {
		return err
	}

	if msg.Type == "compare" {
		switch msg.Kind {
		case "":
		case comparison.KindKeywords, comparison.KindDirectories:
			s.kind = msg.Kind
		default:
			return errors.New("unknown comparison kind " + string(msg.Kind))
		}
		if msg.SnapshotA != "" {
			s.snapshotA = msg.SnapshotA
		}
		if msg.SnapshotB != "" {
			s.snapshotB = msg.SnapshotB
		}
	}

	s.params = next
	return nil
}

func (h *WebSocketHandler) sendComparison(c *websocket.Conn, session *wsSession) error {
	ctx, cancel := context.WithTimeout(context.Background(), wsComparisonTimeout)
	defer cancel()

	response, err := h.service.Compare(ctx, comparison.Request{
		SnapshotA: session.snapshotA,
		SnapshotB: session.snapshotB,
		Kind:      session.kind,
		Params:    session.params,
	})
	if err != nil {
		if errors.Is(err, compare.ErrInvalidParameter) {
			h.sendError(c, err.Error())
			return nil
		}
		logger.Error("WebSocket comparison failed", zap.Error(err))
		h.sendError(c, "Failed to process comparison")
		return nil
	}

	return c.WriteJSON(map[string]interface{}{
		"type":       "result",
		"comparison": response,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	msg := map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	}

	c.WriteJSON(msg)
}

package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/proposal-analyzer/backend/internal/analysis"
	"github.com/proposal-analyzer/backend/pkg/logger"
)

// WebSocketHandler mirrors the SSE stream over a websocket: the client sends
// one start message with the same fields as POST /analysis and receives the
// same event objects as JSON messages.
type WebSocketHandler struct {
	analysis *AnalysisHandler
}

func NewWebSocketHandler(analysisHandler *AnalysisHandler) *WebSocketHandler {
	return &WebSocketHandler{analysis: analysisHandler}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var req analysisRequest
		if err := c.ReadJSON(&req); err != nil {
			logger.Debug("WebSocket read failed", zap.Error(err))
			return
		}

		h.runOver(c, req)
	}
}

func (h *WebSocketHandler) runOver(c *websocket.Conn, req analysisRequest) {
	// A failed write means the peer is gone; cancel so in-flight LLM calls
	// are abandoned instead of running the rest of the analysis for nobody.
	ctx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()

	emit := func(ev analysis.Event) {
		if err := c.WriteJSON(ev); err != nil {
			logger.Debug("WebSocket write failed", zap.Error(err))
			cancelRun()
		}
	}

	runReq, notices, err := h.analysis.buildRunRequest(req)
	if err != nil {
		emit(analysis.ErrorEvent("Invalid analysis request", err.Error()))
		emit(analysis.StreamEndEvent())
		return
	}

	for _, notice := range notices {
		emit(analysis.LogEvent(notice))
	}

	h.analysis.runMu.Lock()
	_, err = h.analysis.engine.Run(ctx, runReq, emit)
	h.analysis.runMu.Unlock()

	if err != nil {
		logger.Error("Analysis run failed", zap.Error(err))
		emit(analysis.ErrorEvent("Analysis failed", err.Error()))
	}

	emit(analysis.StreamEndEvent())
}

package routes

import (
	"encoding/json"
	"net/http"
	"strings"

	"presentcoachdev/modelapi"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

type chatRequest struct {
	Message  string          `json:"message"`
	Insights json.RawMessage `json:"insights"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func (rt *Router) handleChat(w http.ResponseWriter, r *http.Request) {
	tracer := otel.Tracer("routes/handleChat")
	ctx, span := tracer.Start(r.Context(), "handleChat")
	defer span.End()

	var req chatRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, apiError{Error: "Invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondJSON(w, http.StatusBadRequest, apiError{Error: "Message is required"})
		return
	}
	if rt.chat == nil {
		respondJSON(w, http.StatusInternalServerError, apiError{Error: "Chat failed", Message: "chat provider not configured"})
		return
	}

	systemPrompt := modelapi.NewChatContext(req.Insights).SystemPrompt()

	reply, err := rt.chat.Complete(ctx, systemPrompt, req.Message)
	if err != nil {
		span.RecordError(err)
		rt.logger.Logger(ctx).Error("[Router] Chat completion failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, apiError{Error: "Chat failed", Message: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, chatResponse{Response: reply})
}

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Vaishh-Aryaa/CodeInsight/internal/apperror"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/auth"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/model"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/service"
)

// ExplainHandler is the core endpoint of the product: code in,
// explanation out, optionally recorded into a conversation thread.
type ExplainHandler struct {
	explain *service.ExplainService
	threads *service.ThreadService
	logger  *slog.Logger
}

// NewExplainHandler creates an ExplainHandler.
func NewExplainHandler(explain *service.ExplainService, threads *service.ThreadService, logger *slog.Logger) *ExplainHandler {
	return &ExplainHandler{explain: explain, threads: threads, logger: logger}
}

// explainResponse is the success body for HandleExplain.
type explainResponse struct {
	Language    model.Language `json:"language"`
	Explanation string         `json:"explanation"`
	ThreadID    string         `json:"threadId,omitempty"`
}

// HandleExplain classifies the submitted code and generates an
// explanation for it.
//
// HTTP: POST /api/explain
// REQUEST BODY: {"code": "print('hi')", "threadId": "optional"}
// RESPONSE: 200 {"language": "Python", "explanation": "...", "threadId": "..."}
//
// When threadId is set, the exchange is persisted into that thread: the
// submitted code as a "user" message, the explanation as an "assistant"
// message. ORDERING RULES:
//   - The thread is checked (existence + ownership) BEFORE any provider
//     is called, so a bad threadId costs nothing.
//   - Messages are appended only AFTER generation succeeds. A failed
//     generation leaves the thread exactly as it was.
func (h *ExplainHandler) HandleExplain(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req struct {
		Code     string `json:"code"`
		ThreadID string `json:"threadId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	if req.ThreadID != "" {
		if _, err := h.threads.Get(r.Context(), req.ThreadID, userID); err != nil {
			writeError(w, err)
			return
		}
	}

	result, err := h.explain.Explain(r.Context(), req.Code)
	if err != nil {
		writeError(w, err)
		return
	}

	if req.ThreadID != "" {
		userMsg := &model.Message{
			Role:     model.RoleUser,
			Content:  req.Code,
			Language: result.Language,
		}
		assistantMsg := &model.Message{
			Role:    model.RoleAssistant,
			Content: result.Explanation,
		}
		if err := h.threads.AppendMessage(r.Context(), req.ThreadID, userID, userMsg); err != nil {
			writeError(w, err)
			return
		}
		if err := h.threads.AppendMessage(r.Context(), req.ThreadID, userID, assistantMsg); err != nil {
			// The user message landed but the assistant one didn't —
			// log it, still return the explanation the user paid for.
			h.logger.Error("failed to record assistant message",
				slog.String("threadID", req.ThreadID),
				slog.String("error", err.Error()),
			)
		}
	}

	writeJSON(w, http.StatusOK, explainResponse{
		Language:    result.Language,
		Explanation: result.Explanation,
		ThreadID:    req.ThreadID,
	})
}

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

// ThreadHandler exposes conversation thread CRUD. Every route here sits
// behind RequireAuth, so the user ID is always present in the context.
type ThreadHandler struct {
	threads *service.ThreadService
	logger  *slog.Logger
}

// NewThreadHandler creates a ThreadHandler.
func NewThreadHandler(threads *service.ThreadService, logger *slog.Logger) *ThreadHandler {
	return &ThreadHandler{threads: threads, logger: logger}
}

// HandleCreate starts a new empty thread.
//
// HTTP: POST /api/threads
// RESPONSE: 201 {"id": "...", "title": "New Chat", ...}
func (h *ThreadHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	thread, err := h.threads.Create(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, thread)
}

// HandleList returns the caller's threads, newest first, without messages.
//
// HTTP: GET /api/threads
func (h *ThreadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	threads, err := h.threads.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, threads)
}

// HandleGet returns one thread with its full message history.
//
// HTTP: GET /api/threads/{id}
func (h *ThreadHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, apperror.ValidationFailed("id", "thread id is required"))
		return
	}

	thread, err := h.threads.Get(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, thread)
}

// HandleAppendMessage adds a message to a thread directly, without going
// through the explain pipeline. Clients use this to restore imported
// history or to record notes.
//
// HTTP: POST /api/threads/{id}/messages
// REQUEST BODY: {"role": "user", "content": "...", "language": "Python"}
// RESPONSE: 201 with the stored message
func (h *ThreadHandler) HandleAppendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, apperror.ValidationFailed("id", "thread id is required"))
		return
	}

	var req struct {
		Role     string         `json:"role"`
		Content  string         `json:"content"`
		Language model.Language `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	msg := &model.Message{
		Role:     req.Role,
		Content:  req.Content,
		Language: req.Language,
	}
	if err := h.threads.AppendMessage(r.Context(), id, userID, msg); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// HandleRename sets a user-chosen title.
//
// HTTP: PUT /api/threads/{id}
// REQUEST BODY: {"title": "Sorting homework"}
func (h *ThreadHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, apperror.ValidationFailed("id", "thread id is required"))
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	if err := h.threads.Rename(r.Context(), id, userID, req.Title); err != nil {
		writeError(w, err)
		return
	}

	thread, err := h.threads.Get(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, thread)
}

// HandleDelete removes a thread and its messages.
//
// HTTP: DELETE /api/threads/{id}
// RESPONSE: 204 on success
func (h *ThreadHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, apperror.ValidationFailed("id", "thread id is required"))
		return
	}

	if err := h.threads.Delete(r.Context(), id, userID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

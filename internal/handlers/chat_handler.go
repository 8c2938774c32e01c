// File: internal/handlers/chat_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/iyunix/go-chatstore/internal/dtos"
	"github.com/iyunix/go-chatstore/internal/logging"
	"github.com/iyunix/go-chatstore/internal/middleware"
	chatservice "github.com/iyunix/go-chatstore/internal/services/chat"
)

type ChatHandler struct {
	ChatService chatservice.Service
	validate    *validator.Validate
	logger      logging.Logger
}

func NewChatHandler(cs chatservice.Service, logger logging.Logger) (*ChatHandler, error) {
	if cs == nil {
		return nil, chatservice.NewConfigError("chat service is required")
	}
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &ChatHandler{
		ChatService: cs,
		validate:    NewValidator(),
		logger:      logger,
	}, nil
}

// CreateChat handles POST /api/chats/.
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateChatRequestDTO
	if status, fields, err := decodeJSON(w, r, &req); err != nil {
		writeError(w, status, dtos.CodeValidation, err.Error(), fields...)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, dtos.CodeValidation, "request validation failed", fieldErrors(err)...)
		return
	}

	chat, err := h.ChatService.CreateChat(r.Context(), req.Title)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dtos.FromChat(*chat))
}

// GetChat handles GET /api/chats/{chat_id}?limit=N.
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	chatID, ok := h.chatIDFromPath(w, r)
	if !ok {
		return
	}

	query := dtos.ChatDetailQueryDTO{Limit: h.ChatService.Config().DefaultMessageLimit}
	if raw, present := r.URL.Query()["limit"]; present {
		limit, err := strconv.Atoi(raw[0])
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, dtos.CodeValidation, "limit must be an integer",
				dtos.FieldError{Field: "limit", Rule: "integer"})
			return
		}
		query.Limit = limit
	}
	if err := h.validate.Struct(query); err != nil {
		writeError(w, http.StatusUnprocessableEntity, dtos.CodeValidation, "request validation failed", fieldErrors(err)...)
		return
	}

	detail, err := h.ChatService.GetChatDetail(r.Context(), chatID, query.Limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.FromChatDetail(detail))
}

// DeleteChat handles DELETE /api/chats/{chat_id}.
func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	chatID, ok := h.chatIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.ChatService.DeleteChat(r.Context(), chatID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateMessage handles POST /api/chats/{chat_id}/messages.
func (h *ChatHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	chatID, ok := h.chatIDFromPath(w, r)
	if !ok {
		return
	}

	var req dtos.CreateMessageRequestDTO
	if status, fields, err := decodeJSON(w, r, &req); err != nil {
		writeError(w, status, dtos.CodeValidation, err.Error(), fields...)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, dtos.CodeValidation, "request validation failed", fieldErrors(err)...)
		return
	}

	msg, err := h.ChatService.AppendMessage(r.Context(), chatID, req.Text)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dtos.FromMessage(*msg))
}

// Health handles GET /health.
func (h *ChatHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.ChatService.HealthCheck(r.Context()); err != nil {
		h.logger.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, dtos.HealthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, dtos.HealthResponse{Status: "ok"})
}

func (h *ChatHandler) chatIDFromPath(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := mux.Vars(r)["chat_id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		writeError(w, http.StatusUnprocessableEntity, dtos.CodeValidation, "chat_id must be an integer",
			dtos.FieldError{Field: "chat_id", Rule: "integer"})
		return 0, false
	}
	// Integers no chat can have (negative, zero, out of range) become id 0,
	// which the service reports as not found.
	if err != nil || id <= 0 || uint64(id) > uint64(^uint(0)) {
		return 0, true
	}
	return uint(id), true
}

// writeServiceError maps service errors onto status codes. Storage causes are
// logged and never returned to the caller.
func (h *ChatHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ce, ok := chatservice.AsChatError(err)
	if ok {
		switch ce.Type {
		case chatservice.ErrTypeValidation:
			writeError(w, http.StatusUnprocessableEntity, dtos.CodeInvalidArgument, ce.Message)
			return
		case chatservice.ErrTypeNotFound:
			writeError(w, http.StatusNotFound, dtos.CodeNotFound, ce.Message)
			return
		}
	}

	h.logger.Error("request failed",
		"path", r.URL.Path,
		"request_id", middleware.RequestIDFromContext(r.Context()),
		"error", err)
	writeError(w, http.StatusInternalServerError, dtos.CodeInternal, "internal server error")
}

// File: internal/dtos/chat.go
package dtos

import (
	"time"

	"github.com/iyunix/go-chatstore/internal/domain"
	chatservice "github.com/iyunix/go-chatstore/internal/services/chat"
)

// Error codes carried in ErrorResponse.Code.
const (
	CodeValidation       = "validation_error"
	CodeInvalidArgument  = "invalid_argument"
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeRateLimited      = "rate_limited"
	CodeInternal         = "internal_error"
)

// TimeFormat is used for every timestamp leaving the API.
const TimeFormat = time.RFC3339Nano

// CreateChatRequestDTO is the payload for POST /api/chats/.
type CreateChatRequestDTO struct {
	Title string `json:"title" validate:"required,max=200"`
}

// CreateMessageRequestDTO is the payload for POST /api/chats/{chat_id}/messages.
type CreateMessageRequestDTO struct {
	Text string `json:"text" validate:"required,max=5000"`
}

// ChatDetailQueryDTO holds the parsed query string of GET /api/chats/{chat_id}.
type ChatDetailQueryDTO struct {
	Limit int `json:"limit" validate:"min=1,max=100"`
}

type ChatResponseDTO struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

type MessageResponseDTO struct {
	ID        uint   `json:"id"`
	ChatID    uint   `json:"chat_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// ChatWithMessagesDTO is the body of a chat detail response. Messages are
// newest first.
type ChatWithMessagesDTO struct {
	Chat     ChatResponseDTO      `json:"chat"`
	Messages []MessageResponseDTO `json:"messages"`
}

// FieldError describes one failed boundary rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

type ErrorResponse struct {
	Code   string       `json:"code"`
	Detail string       `json:"detail"`
	Errors []FieldError `json:"errors,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// Mapping Functions

func FromChat(chat domain.Chat) ChatResponseDTO {
	return ChatResponseDTO{
		ID:        chat.ID,
		Title:     chat.Title,
		CreatedAt: chat.CreatedAt.UTC().Format(TimeFormat),
	}
}

func FromMessage(msg domain.Message) MessageResponseDTO {
	return MessageResponseDTO{
		ID:        msg.ID,
		ChatID:    msg.ChatID,
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt.UTC().Format(TimeFormat),
	}
}

// FromMessageSlice never returns nil so an empty chat encodes as [].
func FromMessageSlice(messages []domain.Message) []MessageResponseDTO {
	out := make([]MessageResponseDTO, len(messages))
	for i, msg := range messages {
		out[i] = FromMessage(msg)
	}
	return out
}

func FromChatDetail(detail *chatservice.ChatDetail) ChatWithMessagesDTO {
	return ChatWithMessagesDTO{
		Chat:     FromChat(*detail.Chat),
		Messages: FromMessageSlice(detail.Messages),
	}
}

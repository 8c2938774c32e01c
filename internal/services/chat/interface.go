// File: internal/services/chat/interface.go
package chat

import (
	"context"

	"github.com/iyunix/go-chatstore/internal/domain"
)

// ChatDetail is a chat together with its most recent messages, newest first.
type ChatDetail struct {
	Chat     *domain.Chat
	Messages []domain.Message
}

// ChatProvider handles basic chat operations
type ChatProvider interface {
	CreateChat(ctx context.Context, title string) (*domain.Chat, error)
	GetChatDetail(ctx context.Context, chatID uint, limit int) (*ChatDetail, error)
	DeleteChat(ctx context.Context, chatID uint) error
	AppendMessage(ctx context.Context, chatID uint, text string) (*domain.Message, error)
}

// Service combines all chat capabilities
type Service interface {
	ChatProvider
	Config() *Config
	HealthCheck(ctx context.Context) error
}

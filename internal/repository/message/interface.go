// File: internal/repository/message/interface.go
package message

import (
	"context"

	"github.com/iyunix/go-chatstore/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	// FindRecentByChatID returns at most limit messages, newest first.
	FindRecentByChatID(ctx context.Context, chatID uint, limit int) ([]domain.Message, error)
	CountByChatID(ctx context.Context, chatID uint) (int64, error)
	DeleteByChatID(ctx context.Context, chatID uint) (int64, error)
}

// File: internal/services/chat_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/iyunix/go-chatstore/internal/domain"
	"github.com/iyunix/go-chatstore/internal/logging"
	"github.com/iyunix/go-chatstore/internal/repository"
	chatrepo "github.com/iyunix/go-chatstore/internal/repository/chat"
	chatservice "github.com/iyunix/go-chatstore/internal/services/chat"
)

// Pinger is satisfied by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ChatService is the only component that touches storage. Every operation
// runs inside exactly one transaction obtained from the store.
type ChatService struct {
	config *chatservice.Config
	store  repository.Transactor
	logger logging.Logger
}

var _ chatservice.Service = (*ChatService)(nil)

func NewChatService(store repository.Transactor, config *chatservice.Config, logger logging.Logger) (*ChatService, error) {
	if store == nil {
		return nil, chatservice.NewConfigError("store is required")
	}
	if config == nil {
		config = chatservice.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, chatservice.NewConfigError(err.Error())
	}
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}

	return &ChatService{
		config: config,
		store:  store,
		logger: logger,
	}, nil
}

func (s *ChatService) Config() *chatservice.Config { return s.config }

// CreateChat stores a chat with the trimmed title.
func (s *ChatService) CreateChat(ctx context.Context, title string) (*domain.Chat, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, chatservice.NewValidationError("create_chat", "title cannot be empty")
	}
	if utf8.RuneCountInString(title) > s.config.MaxTitleLength {
		return nil, chatservice.NewValidationError("create_chat",
			fmt.Sprintf("title must be at most %d characters", s.config.MaxTitleLength))
	}

	var created *domain.Chat
	err := s.store.Transaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		created, err = repos.Chats.Create(ctx, &domain.Chat{Title: title})
		return err
	})
	if err != nil {
		return nil, s.storageError("create_chat", "could not create chat", err)
	}

	s.logger.Info("chat created", "chat_id", created.ID)
	return created, nil
}

// GetChatDetail returns the chat and up to limit of its newest messages.
func (s *ChatService) GetChatDetail(ctx context.Context, chatID uint, limit int) (*chatservice.ChatDetail, error) {
	if !s.config.LimitInRange(limit) {
		return nil, chatservice.NewValidationError("get_chat_detail",
			fmt.Sprintf("limit must be between %d and %d", s.config.MinMessageLimit, s.config.MaxMessageLimit))
	}

	detail := &chatservice.ChatDetail{}
	err := s.store.Transaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		chatRecord, err := repos.Chats.FindByID(ctx, chatID)
		if err != nil {
			return err
		}
		messages, err := repos.Messages.FindRecentByChatID(ctx, chatID, limit)
		if err != nil {
			return err
		}
		detail.Chat = chatRecord
		detail.Messages = messages
		return nil
	})
	if errors.Is(err, chatrepo.ErrChatNotFound) {
		return nil, chatservice.NewNotFoundError("get_chat_detail", chatID)
	}
	if err != nil {
		return nil, s.storageError("get_chat_detail", "could not load chat", err)
	}

	if detail.Messages == nil {
		detail.Messages = []domain.Message{}
	}
	return detail, nil
}

// DeleteChat removes the chat and all of its messages in one transaction.
func (s *ChatService) DeleteChat(ctx context.Context, chatID uint) error {
	var removed int64
	err := s.store.Transaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Chats.FindByID(ctx, chatID); err != nil {
			return err
		}
		n, err := repos.Messages.DeleteByChatID(ctx, chatID)
		if err != nil {
			return err
		}
		removed = n
		return repos.Chats.Delete(ctx, chatID)
	})
	if errors.Is(err, chatrepo.ErrChatNotFound) {
		return chatservice.NewNotFoundError("delete_chat", chatID)
	}
	if err != nil {
		return s.storageError("delete_chat", "could not delete chat", err)
	}

	s.logger.Info("chat deleted", "chat_id", chatID, "messages_removed", removed)
	return nil
}

// AppendMessage validates text before looking the chat up, so empty text
// against a missing chat is reported as invalid rather than not found.
func (s *ChatService) AppendMessage(ctx context.Context, chatID uint, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, chatservice.NewValidationError("append_message", "text cannot be empty")
	}
	if utf8.RuneCountInString(text) > s.config.MaxTextLength {
		return nil, chatservice.NewValidationError("append_message",
			fmt.Sprintf("text must be at most %d characters", s.config.MaxTextLength))
	}

	var saved *domain.Message
	err := s.store.Transaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		exists, err := repos.Chats.ExistsByID(ctx, chatID)
		if err != nil {
			return err
		}
		if !exists {
			return chatrepo.ErrChatNotFound
		}
		saved, err = repos.Messages.Create(ctx, &domain.Message{ChatID: chatID, Text: text})
		return err
	})
	if errors.Is(err, chatrepo.ErrChatNotFound) {
		return nil, chatservice.NewNotFoundError("append_message", chatID)
	}
	if err != nil {
		return nil, s.storageError("append_message", "could not save message", err)
	}

	s.logger.Debug("message appended", "chat_id", chatID, "message_id", saved.ID)
	return saved, nil
}

// HealthCheck pings the store when it supports it.
func (s *ChatService) HealthCheck(ctx context.Context) error {
	if p, ok := s.store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *ChatService) storageError(operation, msg string, err error) error {
	s.logger.Error("storage operation failed", "operation", operation, "error", err)
	return chatservice.NewStorageError(operation, msg, err)
}

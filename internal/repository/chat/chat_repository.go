// File: internal/repository/chat/chat_repository.go
package chat

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/iyunix/go-chatstore/internal/domain"
	"github.com/iyunix/go-chatstore/internal/logging"
)

var (
	ErrChatNotFound = errors.New("chat not found")
	ErrInvalidChat  = errors.New("invalid chat")
)

type gormChatRepository struct {
	db     *gorm.DB
	logger logging.Logger
}

// NewChatRepository binds the repository to db, which may be a transaction handle.
func NewChatRepository(db *gorm.DB, logger logging.Logger) ChatRepository {
	return &gormChatRepository{db: db, logger: logger}
}

// Create inserts chat and fills in its generated ID and creation time.
func (r *gormChatRepository) Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error) {
	if err := validateChatInput(chat); err != nil {
		r.logger.Warn("[ChatRepository] Validation failed", "error", err)
		return nil, err
	}

	if err := r.db.WithContext(ctx).Omit("Messages").Create(chat).Error; err != nil {
		r.logger.Error("[ChatRepository] Database error during chat creation", "error", err)
		return nil, errors.Wrap(err, "database error creating chat")
	}

	r.logger.Debug("[ChatRepository] Chat created", "chat_id", chat.ID)
	return chat, nil
}

// FindByID returns ErrChatNotFound when no chat has the given id.
func (r *gormChatRepository) FindByID(ctx context.Context, id uint) (*domain.Chat, error) {
	if id == 0 {
		return nil, ErrChatNotFound
	}

	var chat domain.Chat
	err := r.db.WithContext(ctx).First(&chat, id).Error
	return r.handleFindError(err, &chat, "FindByID")
}

func (r *gormChatRepository) ExistsByID(ctx context.Context, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Chat{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		r.logger.Error("[ChatRepository] Database error checking chat existence", "chat_id", id, "error", err)
		return false, errors.Wrap(err, "database error checking chat existence")
	}
	return count > 0, nil
}

// Delete removes the chat row. Messages go with it through the FK cascade;
// callers that need the guarantee regardless of engine settings delete them first.
func (r *gormChatRepository) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return ErrChatNotFound
	}

	result := r.db.WithContext(ctx).Delete(&domain.Chat{}, id)
	if result.Error != nil {
		r.logger.Error("[ChatRepository] Database error deleting chat", "chat_id", id, "error", result.Error)
		return errors.Wrap(result.Error, "database error deleting chat")
	}
	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}

	r.logger.Debug("[ChatRepository] Chat deleted", "chat_id", id)
	return nil
}

func validateChatInput(chat *domain.Chat) error {
	if chat == nil {
		return errors.Wrap(ErrInvalidChat, "chat cannot be nil")
	}
	if strings.TrimSpace(chat.Title) == "" {
		return errors.Wrap(ErrInvalidChat, "title cannot be empty")
	}
	if utf8.RuneCountInString(chat.Title) > domain.MaxChatTitleLength {
		return errors.Wrapf(ErrInvalidChat, "title must be %d characters or less", domain.MaxChatTitleLength)
	}
	return nil
}

// handleFindError maps gorm's not-found to ErrChatNotFound and wraps everything else.
func (r *gormChatRepository) handleFindError(err error, chat *domain.Chat, operation string) (*domain.Chat, error) {
	if err == nil {
		return chat, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}

	r.logger.Error("[ChatRepository] database error", "operation", operation, "error", err)
	return nil, errors.Wrap(err, "database query failed")
}

// File: internal/repository/message/message_repository.go
package message

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
	ErrInvalidMessage = errors.New("invalid message")
	ErrInvalidLimit   = errors.New("invalid limit")
)

// MaxScanLimit caps a single FindRecentByChatID call regardless of caller input.
const MaxScanLimit = 1000

type gormMessageRepository struct {
	db     *gorm.DB
	logger logging.Logger
}

func NewMessageRepository(db *gorm.DB, logger logging.Logger) MessageRepository {
	return &gormMessageRepository{db: db, logger: logger}
}

func (r *gormMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if err := validateMessageInput(message); err != nil {
		r.logger.Warn("[MessageRepository] Validation failed", "error", err)
		return nil, err
	}

	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		// message text is user content; only ids are logged
		r.logger.Error("[MessageRepository] Database error during message creation", "chat_id", message.ChatID, "error", err)
		return nil, errors.Wrap(err, "database error creating message")
	}

	r.logger.Debug("[MessageRepository] Message created", "message_id", message.ID, "chat_id", message.ChatID)
	return message, nil
}

// FindRecentByChatID orders by created_at DESC. Rows sharing a timestamp are
// ordered by id DESC so results are stable between calls.
func (r *gormMessageRepository) FindRecentByChatID(ctx context.Context, chatID uint, limit int) ([]domain.Message, error) {
	if limit <= 0 || limit > MaxScanLimit {
		return nil, errors.Wrapf(ErrInvalidLimit, "limit must be between 1 and %d, got %d", MaxScanLimit, limit)
	}

	messages := make([]domain.Message, 0, limit)
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		r.logger.Error("[MessageRepository] Database error finding recent messages", "chat_id", chatID, "error", err)
		return nil, errors.Wrap(err, "database error fetching messages")
	}
	return messages, nil
}

func (r *gormMessageRepository) CountByChatID(ctx context.Context, chatID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).Where("chat_id = ?", chatID).Count(&count).Error
	if err != nil {
		r.logger.Error("[MessageRepository] Database error counting messages", "chat_id", chatID, "error", err)
		return 0, errors.Wrap(err, "database error counting messages")
	}
	return count, nil
}

// DeleteByChatID removes every message of a chat and reports how many went.
func (r *gormMessageRepository) DeleteByChatID(ctx context.Context, chatID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Delete(&domain.Message{})
	if result.Error != nil {
		r.logger.Error("[MessageRepository] Database error deleting messages", "chat_id", chatID, "error", result.Error)
		return 0, errors.Wrap(result.Error, "database error deleting messages")
	}
	return result.RowsAffected, nil
}

func validateMessageInput(message *domain.Message) error {
	if message == nil {
		return errors.Wrap(ErrInvalidMessage, "message cannot be nil")
	}
	if message.ChatID == 0 {
		return errors.Wrap(ErrInvalidMessage, "chat ID is required")
	}
	if strings.TrimSpace(message.Text) == "" {
		return errors.Wrap(ErrInvalidMessage, "text cannot be empty")
	}
	if utf8.RuneCountInString(message.Text) > domain.MaxMessageTextLength {
		return errors.Wrapf(ErrInvalidMessage, "text must be %d characters or less", domain.MaxMessageTextLength)
	}
	return nil
}

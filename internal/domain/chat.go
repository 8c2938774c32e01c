// File: internal/domain/chat.go
package domain

import "time"

// Field bounds shared by the storage schema and the service layer.
const (
	MaxChatTitleLength   = 200
	MaxMessageTextLength = 5000
)

// Chat represents a single named conversation.
type Chat struct {
	ID        uint      `gorm:"primarykey"`
	Title     string    `gorm:"size:200;not null;index;check:chk_chats_title_not_empty,length(trim(title)) > 0"`
	CreatedAt time.Time `gorm:"not null"`

	// Messages exists only so the migrator declares the FK with ON DELETE CASCADE.
	// It is never preloaded; messages are always fetched through the message repository.
	Messages []Message `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName pins the table name so it does not depend on the naming strategy.
func (Chat) TableName() string { return "chats" }

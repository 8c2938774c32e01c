// File: internal/domain/message.go
package domain

import "time"

// Message represents a single piece of text within a chat.
// A message belongs to exactly one chat for its whole lifetime.
type Message struct {
	ID        uint      `gorm:"primarykey"`
	ChatID    uint      `gorm:"not null;index:idx_messages_chat_created,priority:1"`
	Text      string    `gorm:"size:5000;not null;check:chk_messages_text_not_empty,length(trim(text)) > 0"`
	CreatedAt time.Time `gorm:"not null;index:idx_messages_chat_created,priority:2"`
}

func (Message) TableName() string { return "messages" }

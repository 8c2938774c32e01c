// File: internal/repository/store.go
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/iyunix/go-chatstore/internal/database"
	"github.com/iyunix/go-chatstore/internal/logging"
	"github.com/iyunix/go-chatstore/internal/repository/chat"
	"github.com/iyunix/go-chatstore/internal/repository/message"
)

// Repositories is the set of repositories bound to one transaction.
type Repositories struct {
	Chats    chat.ChatRepository
	Messages message.MessageRepository
}

// TxFunc is the body of a unit of work. It must do all its storage access
// through repos; the handle is invalid once the function returns.
type TxFunc func(ctx context.Context, repos Repositories) error

// Transactor runs a unit of work in a single storage transaction.
type Transactor interface {
	Transaction(ctx context.Context, fn TxFunc) error
}

// Store owns the connection pool and hands out transaction-scoped repositories.
type Store struct {
	db     *gorm.DB
	logger logging.Logger
}

func NewStore(db *gorm.DB, logger logging.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Transaction begins a transaction, runs fn and commits when fn returns nil.
// Any error or panic rolls the transaction back and the connection is
// returned to the pool on every path.
func (s *Store) Transaction(ctx context.Context, fn TxFunc) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, Repositories{
			Chats:    chat.NewChatRepository(tx, s.logger),
			Messages: message.NewMessageRepository(tx, s.logger),
		})
	})
}

// Ping checks that the underlying store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return database.Ping(ctx, s.db)
}

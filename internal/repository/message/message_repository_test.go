package message

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iyunix/go-chatstore/internal/config"
	"github.com/iyunix/go-chatstore/internal/database"
	"github.com/iyunix/go-chatstore/internal/domain"
	"github.com/iyunix/go-chatstore/internal/logging"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	opts := database.Options{Driver: config.DriverSQLite, DSN: filepath.Join(t.TempDir(), "chats.db")}
	db, err := database.Open(context.Background(), opts, &logging.NoOpLogger{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func createChat(t *testing.T, db *gorm.DB, title string) *domain.Chat {
	t.Helper()
	chat := &domain.Chat{Title: title}
	require.NoError(t, db.Omit("Messages").Create(chat).Error)
	return chat
}

func TestMessageRepository_Create(t *testing.T) {
	db := openTestDB(t)
	repo := NewMessageRepository(db, &logging.NoOpLogger{})
	chat := createChat(t, db, "Test Chat")

	msg, err := repo.Create(context.Background(), &domain.Message{ChatID: chat.ID, Text: "Hello, world!"})
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.Equal(t, chat.ID, msg.ChatID)
	assert.False(t, msg.CreatedAt.IsZero())
}

func TestMessageRepository_CreateValidation(t *testing.T) {
	db := openTestDB(t)
	repo := NewMessageRepository(db, &logging.NoOpLogger{})
	chat := createChat(t, db, "Test Chat")

	for name, msg := range map[string]*domain.Message{
		"nil":        nil,
		"no chat":    {Text: "hi"},
		"empty":      {ChatID: chat.ID, Text: ""},
		"whitespace": {ChatID: chat.ID, Text: "   "},
		"too long":   {ChatID: chat.ID, Text: strings.Repeat("A", domain.MaxMessageTextLength+1)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Create(context.Background(), msg)
			assert.ErrorIs(t, err, ErrInvalidMessage)
		})
	}
}

func TestMessageRepository_CreateRejectsUnknownChat(t *testing.T) {
	repo := NewMessageRepository(openTestDB(t), &logging.NoOpLogger{})

	_, err := repo.Create(context.Background(), &domain.Message{ChatID: 424242, Text: "dangling"})
	assert.Error(t, err, "foreign key must reject a message without a chat")
}

func TestMessageRepository_FindRecentByChatID(t *testing.T) {
	db := openTestDB(t)
	repo := NewMessageRepository(db, &logging.NoOpLogger{})
	chat := createChat(t, db, "Ordered")
	other := createChat(t, db, "Other")
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := repo.Create(ctx, &domain.Message{ChatID: chat.ID, Text: fmt.Sprintf("Message %d", i), CreatedAt: base.Add(time.Duration(i) * time.Second)})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &domain.Message{ChatID: other.ID, Text: "elsewhere"})
	require.NoError(t, err)

	msgs, err := repo.FindRecentByChatID(ctx, chat.ID, 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "Message 4", msgs[0].Text)
	assert.Equal(t, "Message 3", msgs[1].Text)
	assert.Equal(t, "Message 2", msgs[2].Text)

	all, err := repo.FindRecentByChatID(ctx, chat.ID, 100)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	none, err := repo.FindRecentByChatID(ctx, 99999, 10)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMessageRepository_FindRecentByChatID_TiesAreStable(t *testing.T) {
	db := openTestDB(t)
	repo := NewMessageRepository(db, &logging.NoOpLogger{})
	chat := createChat(t, db, "Ties")
	ctx := context.Background()

	same := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for _, text := range []string{"a", "b", "c"} {
		_, err := repo.Create(ctx, &domain.Message{ChatID: chat.ID, Text: text, CreatedAt: same})
		require.NoError(t, err)
	}

	msgs, err := repo.FindRecentByChatID(ctx, chat.ID, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{msgs[0].Text, msgs[1].Text, msgs[2].Text})
}

func TestMessageRepository_FindRecentByChatID_InvalidLimit(t *testing.T) {
	repo := NewMessageRepository(openTestDB(t), &logging.NoOpLogger{})

	for _, limit := range []int{0, -1, MaxScanLimit + 1} {
		_, err := repo.FindRecentByChatID(context.Background(), 1, limit)
		assert.ErrorIs(t, err, ErrInvalidLimit, "limit %d", limit)
	}
}

func TestMessageRepository_CountAndDeleteByChatID(t *testing.T) {
	db := openTestDB(t)
	repo := NewMessageRepository(db, &logging.NoOpLogger{})
	chat := createChat(t, db, "Count")
	keep := createChat(t, db, "Keep")
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := repo.Create(ctx, &domain.Message{ChatID: chat.ID, Text: "x"})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &domain.Message{ChatID: keep.ID, Text: "y"})
	require.NoError(t, err)

	n, err := repo.CountByChatID(ctx, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	deleted, err := repo.DeleteByChatID(ctx, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)

	n, err = repo.CountByChatID(ctx, keep.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-chatstore/internal/config"
	"github.com/iyunix/go-chatstore/internal/domain"
	"github.com/iyunix/go-chatstore/internal/logging"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "chats.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", SQLiteDSN("chats.db"))
	assert.Equal(t, "chats.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", SQLiteDSN("chats.db?mode=rwc"))
	assert.Equal(t, "x.db?_pragma=foreign_keys(0)&_pragma=busy_timeout(1)", SQLiteDSN("x.db?_pragma=foreign_keys(0)&_pragma=busy_timeout(1)"))
}

func TestMySQLDSN(t *testing.T) {
	assert.Equal(t, "u:p@tcp(db:3306)/chats?parseTime=true&loc=UTC", MySQLDSN("u:p@tcp(db:3306)/chats"))
	assert.Equal(t, "u:p@tcp(db:3306)/chats?loc=Local&parseTime=true", MySQLDSN("u:p@tcp(db:3306)/chats?loc=Local"))
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "oracle", DSN: "x"}, &logging.NoOpLogger{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestOpen_RejectsEmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: config.DriverSQLite}, &logging.NoOpLogger{})
	require.Error(t, err)
}

func TestOpenAndMigrate_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "chats.db")
	db, err := Open(context.Background(), Options{Driver: config.DriverSQLite, DSN: dsn}, &logging.NoOpLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable(&domain.Chat{}))
	assert.True(t, db.Migrator().HasTable(&domain.Message{}))
	assert.True(t, db.Migrator().HasIndex(&domain.Message{}, "idx_messages_chat_created"))

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)

	require.NoError(t, Ping(context.Background(), db))
}

func TestSchema_RejectsBlankTitle(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "chats.db")
	db, err := Open(context.Background(), Options{Driver: config.DriverSQLite, DSN: dsn}, &logging.NoOpLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	require.NoError(t, Migrate(db))

	err = db.Create(&domain.Chat{Title: "   "}).Error
	assert.Error(t, err, "check constraint should reject whitespace-only titles")
}

func TestNow_IsUTCMicroseconds(t *testing.T) {
	now := Now()
	assert.Equal(t, "UTC", now.Location().String())
	assert.Zero(t, now.Nanosecond()%1000)
}

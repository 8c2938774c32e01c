// File: internal/database/database.go
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/iyunix/go-chatstore/internal/config"
	"github.com/iyunix/go-chatstore/internal/domain"
	"github.com/iyunix/go-chatstore/internal/logging"
)

// SlowQueryThreshold is the duration above which gorm reports a query as slow.
const SlowQueryThreshold = 200 * time.Millisecond

// Options selects and tunes the relational store.
type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// OptionsFromConfig copies the database settings out of the application config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DBDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	}
}

// Now is the storage clock used for created_at columns. Values are UTC and
// truncated to microseconds, the finest precision every supported backend keeps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Open connects to the configured store and verifies the connection.
func Open(ctx context.Context, opts Options, logger logging.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		// created_at comes from this clock, not the server's, so every backend stores the same value.
		NowFunc:                func() time.Time { return Now() },
		Logger:                 newGormLogger(logger),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", opts.Driver)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get underlying sql.DB")
	}

	if opts.Driver == config.DriverSQLite {
		// sqlite has a single writer; one connection avoids SQLITE_BUSY between pooled conns.
		sqlDB.SetMaxOpenConns(1)
	} else {
		if opts.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		}
		if opts.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
		}
	}

	if err := Ping(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	logger.Info("database connection established", "driver", opts.Driver)
	return db, nil
}

// Migrate creates or updates the chats and messages tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.Chat{}, &domain.Message{}); err != nil {
		return errors.Wrap(err, "auto-migrate schema")
	}
	return nil
}

// Ping checks connectivity, honoring the context deadline.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "get underlying sql.DB")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.Wrap(err, "ping database")
	}
	return nil
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "get underlying sql.DB")
	}
	return sqlDB.Close()
}

func dialectorFor(opts Options) (gorm.Dialector, error) {
	if strings.TrimSpace(opts.DSN) == "" {
		return nil, errors.New("empty database DSN")
	}
	switch opts.Driver {
	case config.DriverSQLite:
		return sqlite.Open(SQLiteDSN(opts.DSN)), nil
	case config.DriverPostgres:
		return postgres.Open(opts.DSN), nil
	case config.DriverMySQL:
		return mysql.Open(MySQLDSN(opts.DSN)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

// SQLiteDSN adds the pragmas the schema relies on: FK enforcement (for the
// cascade) and a busy timeout.
func SQLiteDSN(dsn string) string {
	pragmas := []string{}
	if !strings.Contains(dsn, "foreign_keys") {
		pragmas = append(pragmas, "_pragma=foreign_keys(1)")
	}
	if !strings.Contains(dsn, "busy_timeout") {
		pragmas = append(pragmas, "_pragma=busy_timeout(5000)")
	}
	if len(pragmas) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(pragmas, "&")
}

// MySQLDSN makes sure DATETIME columns scan into time.Time in UTC.
func MySQLDSN(dsn string) string {
	params := []string{}
	if !strings.Contains(dsn, "parseTime=") {
		params = append(params, "parseTime=true")
	}
	if !strings.Contains(dsn, "loc=") {
		params = append(params, "loc=UTC")
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// gormWriter routes gorm's log lines into the application logger.
type gormWriter struct {
	logger logging.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "gorm")
}

func newGormLogger(logger logging.Logger) gormlogger.Interface {
	return gormlogger.New(gormWriter{logger: logger}, gormlogger.Config{
		SlowThreshold:             SlowQueryThreshold,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/dominusaudio/commerce-api/internal/shared/tx"
)

// Connect opens a PostgreSQL connection via GORM and verifies connectivity.
// TranslateError is enabled so unique-constraint violations surface as
// gorm.ErrDuplicatedKey (the order-number retry relies on this).
func Connect(ctx context.Context, dsn string) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Close unwraps and closes the underlying connection pool, logging on failure.
func Close(db *gorm.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		if logger != nil {
			logger.Warn("failed to unwrap postgres connection", slog.String("error", err.Error()))
		}
		return
	}
	_ = sqlDB.Close()
}

type txKey struct{}

// TxRunner executes functions inside a database transaction. The transactional
// handle travels on the context so repositories from different bounded contexts
// commit as one unit.
type TxRunner struct {
	db *gorm.DB
}

var _ tx.Runner = (*TxRunner)(nil)

func NewTxRunner(db *gorm.DB) *TxRunner {
	return &TxRunner{db: db}
}

// InTx runs fn within a transaction. Nested calls join the surrounding
// transaction through a savepoint, so a ledger operation invoked from the
// order-creation unit rolls back with it.
func (r *TxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return FromContext(ctx, r.db).WithContext(ctx).Transaction(func(txDB *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, txDB))
	})
}

// FromContext resolves the transactional handle carried on ctx, falling back
// to the given root handle outside of a transaction.
func FromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if txDB, ok := ctx.Value(txKey{}).(*gorm.DB); ok && txDB != nil {
		return txDB
	}
	return fallback
}

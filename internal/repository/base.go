// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// DefaultTxTimeout bounds a unit of work started by RunInTx.
const DefaultTxTimeout = 5 * time.Second

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, pgUniqueViolation)
}

// Stores groups the repositories bound to one database handle, usually a transaction.
type Stores struct {
	Requests  RegistrationRequestRepository
	Users     UserRepository
	AuditLogs AuditLogRepository
}

// NewStores binds every repository to db.
func NewStores(db *gorm.DB) Stores {
	return Stores{
		Requests:  NewRegistrationRequestRepository(db),
		Users:     NewUserRepository(db),
		AuditLogs: NewAuditLogRepository(db),
	}
}

// Transactor runs a unit of work against stores bound to a single transaction.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}

type gormTransactor struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewTransactor returns a Transactor over db using DefaultTxTimeout.
func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db, timeout: DefaultTxTimeout}
}

// RunInTx commits when fn returns nil and rolls back otherwise.
func (t *gormTransactor) RunInTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewStores(tx))
	})
}

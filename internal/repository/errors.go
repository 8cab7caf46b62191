// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"quill/internal/database"
	"quill/internal/models"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation        = "23505"
	pgCheckViolation         = "23514"
	pgForeignKeyViolation    = "23503"
	pgSerializationFailure   = "40001"
	maxSerializationAttempts = 3

	mysqlDuplicateEntry      = 1062
	mysqlCheckViolation      = 3819
	mysqlForeignKeyViolation = 1452
)

func mysqlCode(err error) uint16 {
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number
	}
	return 0
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || pgCode(err) == pgUniqueViolation || mysqlCode(err) == mysqlDuplicateEntry {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}

func isCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrCheckConstraintViolated) || pgCode(err) == pgCheckViolation || mysqlCode(err) == mysqlCheckViolation {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "check constraint")
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) || pgCode(err) == pgForeignKeyViolation || mysqlCode(err) == mysqlForeignKeyViolation {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}

// dbError passes AppErrors through and wraps anything else as INTERNAL_ERROR.
func dbError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}

// notFoundOr maps gorm.ErrRecordNotFound to a NOT_FOUND error for resource.
func notFoundOr(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return dbError(err)
}

// transaction runs fc in a transaction that is serializable on PostgreSQL.
// SQLite has a single writer, so its default level already serializes.
// Serialization failures are retried a bounded number of times.
func transaction(ctx context.Context, db *gorm.DB, fc func(tx *gorm.DB) error) error {
	var opts []*sql.TxOptions
	if database.IsPostgres(db) {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}

	var err error
	for attempt := 0; attempt < maxSerializationAttempts; attempt++ {
		err = db.WithContext(ctx).Transaction(fc, opts...)
		if pgCode(err) != pgSerializationFailure {
			return err
		}
	}
	return err
}

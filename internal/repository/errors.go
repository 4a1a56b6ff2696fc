package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound means the row does not exist or is not owned by the caller.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate means a unique constraint rejected the write.
	ErrDuplicate = errors.New("duplicate record")
)

const (
	mysqlDuplicateEntry   = 1062
	postgresUniqueViolate = "23505"
)

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isDuplicateKey(err):
		return ErrDuplicate
	default:
		return err
	}
}

// isDuplicateKey covers drivers opened without TranslateError.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == postgresUniqueViolate {
		return true
	}
	return false
}

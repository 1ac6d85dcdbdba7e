package authgate

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"
)

// pgUniqueViolation is the SQLSTATE for unique constraint violations
const pgUniqueViolation = "23505"

// Users stores user records. Records are only ever inserted; a second
// insert with the same ID fails with ErrUserAlreadyExists.
type Users interface {
	Create(ctx context.Context, record *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Count(ctx context.Context) (int, error)
}

type users struct {
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	return &users{db: db}
}

func (a *users) Create(ctx context.Context, record *User) (*User, error) {
	if record == nil {
		return nil, ErrInvalidPayload
	}

	if _, err := a.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if IsDuplicateKeyError(err) {
			return nil, ErrUserAlreadyExists
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user").
			WithTextCode(TextCodeStorage).
			WithCode(http.StatusInternalServerError)
	}

	return record, nil
}

func (a *users) GetByID(ctx context.Context, id string) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", strings.TrimSpace(id)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not read user").
			WithTextCode(TextCodeStorage).
			WithCode(http.StatusInternalServerError)
	}

	return record, nil
}

func (a *users) Count(ctx context.Context) (int, error) {
	return a.db.NewSelect().Model((*User)(nil)).Count(ctx)
}

// IsDuplicateKeyError reports whether err is a unique constraint violation
// raised by postgres or sqlite.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "constraint failed: users.id")
}

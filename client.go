package authgate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// ErrClientClosed is returned by a ClientHandle after Close
var ErrClientClosed = errors.New("database client closed")

// Opener opens a database from a DSN
type Opener func(dsn string) (*bun.DB, error)

// ClientHandle is the process wide database client. The connection is
// opened and migrated on first use; subsequent calls reuse it.
// A failed open is retried on the next call.
type ClientHandle struct {
	mu     sync.Mutex
	dsn    string
	debug  bool
	open   Opener
	logger Logger
	db     *bun.DB
	repo   RepositoryManager
	closed bool
}

type ClientOption func(*ClientHandle)

// WithClientDebug adds a verbose query hook to the opened database.
func WithClientDebug(debug bool) ClientOption {
	return func(h *ClientHandle) {
		h.debug = debug
	}
}

// WithClientOpener replaces the default DSN based opener.
func WithClientOpener(open Opener) ClientOption {
	return func(h *ClientHandle) {
		if open != nil {
			h.open = open
		}
	}
}

// WithClientLogger sets the logger
func WithClientLogger(logger Logger) ClientOption {
	return func(h *ClientHandle) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewClientHandle returns a handle for dsn. No connection is made until
// DB or Repositories is called.
func NewClientHandle(dsn string, opts ...ClientOption) *ClientHandle {
	h := &ClientHandle{
		dsn:    dsn,
		open:   OpenDB,
		logger: defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// DB returns the shared database, opening it on first use.
func (h *ClientHandle) DB(ctx context.Context) (*bun.DB, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ensureOpen(ctx); err != nil {
		return nil, err
	}
	return h.db, nil
}

// Repositories returns the repository manager bound to the shared database.
func (h *ClientHandle) Repositories(ctx context.Context) (RepositoryManager, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ensureOpen(ctx); err != nil {
		return nil, err
	}
	return h.repo, nil
}

// ensureOpen must be called with h.mu held.
func (h *ClientHandle) ensureOpen(ctx context.Context) error {
	if h.closed {
		return ErrClientClosed
	}

	if h.db != nil {
		return nil
	}

	db, err := h.open(h.dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if h.debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("migrate: %w", err)
	}

	repo := NewRepositoryManager(db)
	repo.MustValidate()

	h.logger.Info("database client initialized", "dialect", db.Dialect().Name().String())

	h.db = db
	h.repo = repo
	return nil
}

// Ready pings the database.
func (h *ClientHandle) Ready(ctx context.Context) error {
	db, err := h.DB(ctx)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Close releases the database. The handle can not be reused.
func (h *ClientHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	if h.db == nil {
		return nil
	}

	err := h.db.Close()
	h.db = nil
	h.repo = nil
	return err
}

// OpenDB opens a postgres database for postgres:// DSNs and sqlite otherwise.
func OpenDB(dsn string) (*bun.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("database DSN is required")
	}

	if isPostgresDSN(dsn) {
		sqldb, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, err
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		sqldb.SetMaxOpenConns(1)
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

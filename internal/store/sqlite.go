package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/portfolio-assistant/internal/domain"
	"github.com/ashureev/portfolio-assistant/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed session repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// WAL lets readers proceed while a turn pair is being written.
	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS agent_sessions (
		session_id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS agent_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES agent_sessions(session_id),
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_agent_messages_session ON agent_messages(session_id, id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// GetOrCreate returns a handle for sessionID, inserting an empty session
// record when none exists.
func (s *SQLiteStore) GetOrCreate(ctx context.Context, sessionID string) (Session, error) {
	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO agent_sessions (session_id, created_at, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(session_id) DO NOTHING`,
		sessionID, now, now,
	)
	if err != nil {
		return nil, shared.Dependency("get or create session", shared.StorageMessage(err), err)
	}
	return &sqliteSession{db: s.db, id: sessionID}, nil
}

type sqliteSession struct {
	db *sql.DB
	id string
}

func (s *sqliteSession) ID() string {
	return s.id
}

// Append writes turns inside one transaction so an exchange is never half-stored.
func (s *sqliteSession) Append(ctx context.Context, turns ...domain.Turn) (err error) {
	if len(turns) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return shared.Dependency("append turns", shared.StorageMessage(err), err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				slog.Warn("failed to roll back turn append", "session_id", s.id, "error", rbErr)
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO agent_messages (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return shared.Dependency("append turns", shared.StorageMessage(err), err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			slog.Warn("failed to close append statement", "error", closeErr)
		}
	}()

	for _, turn := range turns {
		if !turn.Role.Valid() {
			return fmt.Errorf("append turns: unknown role %q", turn.Role)
		}
		ts := turn.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		if _, err = stmt.ExecContext(ctx, s.id, string(turn.Role), turn.Content, ts.UnixNano()); err != nil {
			return shared.Dependency("append turns", shared.StorageMessage(err), err)
		}
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE agent_sessions SET updated_at = ? WHERE session_id = ?`, time.Now().Unix(), s.id); err != nil {
		return shared.Dependency("append turns", shared.StorageMessage(err), err)
	}

	if err = tx.Commit(); err != nil {
		return shared.Dependency("append turns", shared.StorageMessage(err), err)
	}
	return nil
}

// History returns turns in insertion order.
func (s *sqliteSession) History(ctx context.Context) ([]domain.Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, created_at FROM agent_messages WHERE session_id = ? ORDER BY id ASC`, s.id)
	if err != nil {
		return nil, shared.Dependency("load history", shared.StorageMessage(err), err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close history rows", "error", closeErr)
		}
	}()

	var turns []domain.Turn
	for rows.Next() {
		var role string
		var turn domain.Turn
		var createdAt int64
		if err := rows.Scan(&role, &turn.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		turn.Role = domain.Role(role)
		turn.Timestamp = time.Unix(0, createdAt).UTC()
		turns = append(turns, turn)
	}

	if err := rows.Err(); err != nil {
		return nil, shared.Dependency("load history", shared.StorageMessage(err), err)
	}

	return turns, nil
}

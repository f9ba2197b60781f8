package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/UltraBlur/Elephant-Toolkits-Open/pkg/timecode"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS history (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	a TEXT NOT NULL,
	b TEXT NOT NULL,
	operation TEXT NOT NULL,
	result TEXT NOT NULL,
	format TEXT NOT NULL,
	rate TEXT NOT NULL,
	clamped INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
`

// SQLiteStore keeps history in a SQLite database file.
type SQLiteStore struct {
	db     *sql.DB
	logger *logrus.Logger
	limit  int
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string, logger *logrus.Logger, limit int) (*SQLiteStore, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// One writer keeps SQLite from reporting SQLITE_BUSY under the server.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger, limit: limit}, nil
}

func (s *SQLiteStore) Add(ctx context.Context, e Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO history (id, a, b, operation, result, format, rate, clamped, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.A, e.B, string(e.Operation), e.Result, string(e.Format), e.Rate.String(), e.Clamped, e.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM history WHERE seq NOT IN (
			SELECT seq FROM history ORDER BY seq DESC LIMIT ?
		)`, s.limit)
	if err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, a, b, operation, result, format, rate, clamped, created_at
		FROM history ORDER BY seq DESC LIMIT ?`, s.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			op, f, r  string
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.A, &e.B, &op, &e.Result, &f, &r, &e.Clamped, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		rate, err := timecode.ParseRate(r)
		if err != nil {
			s.logger.WithError(err).WithField("entry_id", e.ID).Warn("Skipping history entry with bad rate")
			continue
		}
		e.Operation = timecode.Operation(op)
		e.Format = timecode.Format(f)
		e.Rate = rate
		e.CreatedAt = time.Unix(0, createdAt).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/Alpharobocup/bot-all/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: mkdir: %v", domain.ErrStorage, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", domain.ErrStorage, err)
	}

	// SQLite is a single-writer engine; one connection serializes all
	// writers and keeps readers from observing partial commits.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: apply pragmas: %v", domain.ErrStorage, err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: migrations: %v", domain.ErrStorage, err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// CreateScheduled inserts a new active scheduled entry and returns its id.
func (r *SQLiteRepo) CreateScheduled(ctx context.Context, chat string, fireTime domain.FireTime, text string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO scheduled (chat, send_time, text, active)
		VALUES (?, ?, ?, 1)`,
		chat, fireTime.String(), text,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: insert scheduled: %v", domain.ErrStorage, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: last insert id: %v", domain.ErrStorage, err)
	}
	return id, nil
}

// ListScheduled returns every scheduled entry, active or not. Callers filter
// by time and active flag themselves.
func (r *SQLiteRepo) ListScheduled(ctx context.Context) ([]domain.ScheduledEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, chat, send_time, text, active
		FROM scheduled`)
	if err != nil {
		return nil, fmt.Errorf("%w: list scheduled: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	var res []domain.ScheduledEntry
	for rows.Next() {
		var (
			e         domain.ScheduledEntry
			sendTime  string
			activeInt int
		)
		if err := rows.Scan(&e.ID, &e.Chat, &sendTime, &e.Text, &activeInt); err != nil {
			return nil, fmt.Errorf("%w: scan scheduled: %v", domain.ErrStorage, err)
		}
		ft, err := domain.ParseFireTime(sendTime)
		if err != nil {
			// A row that fails HH:MM validation never existed through this
			// API; surface it as a storage problem.
			return nil, fmt.Errorf("%w: row %d: bad send_time %q", domain.ErrStorage, e.ID, sendTime)
		}
		e.FireTime = ft
		e.Active = activeInt != 0
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list scheduled: %v", domain.ErrStorage, err)
	}
	return res, nil
}

// SetScheduledActive toggles the active flag. Entries are soft-deleted this
// way, never removed.
func (r *SQLiteRepo) SetScheduledActive(ctx context.Context, id int64, active bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE scheduled
		SET active = ?
		WHERE id = ?`,
		boolToInt(active), id,
	)
	if err != nil {
		return fmt.Errorf("%w: set active: %v", domain.ErrStorage, err)
	}
	return nil
}

// CreateNote inserts an immutable note owned by the given user.
func (r *SQLiteRepo) CreateNote(ctx context.Context, owner int64, content string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO notes (user_id, content, created_at)
		VALUES (?, ?, ?)`,
		owner, content, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: insert note: %v", domain.ErrStorage, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: last insert id: %v", domain.ErrStorage, err)
	}
	return id, nil
}

// ListNotes returns the owner's notes, newest first (id descending).
func (r *SQLiteRepo) ListNotes(ctx context.Context, owner int64) ([]domain.Note, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, content, created_at
		FROM notes
		WHERE user_id = ?
		ORDER BY id DESC`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list notes: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	var res []domain.Note
	for rows.Next() {
		var (
			n         domain.Note
			createdAt string
		)
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scan note: %v", domain.ErrStorage, err)
		}
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			n.CreatedAt = ts
		}
		res = append(res, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list notes: %v", domain.ErrStorage, err)
	}
	return res, nil
}

// boolToInt converts a boolean to 1/0 for SQLite.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Export status values.
const (
	ExportRunning   = "running"
	ExportSucceeded = "succeeded"
	ExportFailed    = "failed"
)

// ExportRecord is one export attempt of a session.
type ExportRecord struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Status    string    `json:"status"`
	VideoURL  string    `json:"videoUrl,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Repository interface {
	SnapshotStore

	CreateExport(ctx context.Context, rec *ExportRecord) error
	FinishExport(ctx context.Context, id, status, videoURL, errMsg string) error
	ListExports(ctx context.Context, sessionID string, limit int) ([]*ExportRecord, error)

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

// SQLiteRepository stores snapshots, export history and settings in the
// local database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	savedAt := snap.SavedAt.UTC().Format(time.RFC3339Nano)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, updated_at = excluded.updated_at
	`, snap.SessionID, snap.Title, savedAt, savedAt); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (session_id, data, clip_count, saved_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET data = excluded.data, clip_count = excluded.clip_count, saved_at = excluded.saved_at
	`, snap.SessionID, string(data), len(snap.Clips), savedAt); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}

	return tx.Commit()
}

func (r *SQLiteRepository) LoadSnapshot(ctx context.Context, sessionID string) (Snapshot, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM snapshots WHERE session_id = ?`, sessionID).Scan(&data)
	if err == sql.ErrNoRows {
		return Snapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func (r *SQLiteRepository) DeleteSnapshot(ctx context.Context, sessionID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

func (r *SQLiteRepository) CreateExport(ctx context.Context, rec *ExportRecord) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if rec.Status == "" {
		rec.Status = ExportRunning
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, created_at, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, rec.SessionID, now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO exports (id, session_id, status, video_url, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.SessionID, rec.Status, nullString(rec.VideoURL), nullString(rec.Error),
		rec.CreatedAt.Format(time.RFC3339Nano), rec.UpdatedAt.Format(time.RFC3339Nano))
	return err
}

func (r *SQLiteRepository) FinishExport(ctx context.Context, id, status, videoURL, errMsg string) error {
	if status != ExportSucceeded && status != ExportFailed {
		return fmt.Errorf("invalid final export status %q", status)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE exports SET status = ?, video_url = ?, error = ?, updated_at = ? WHERE id = ?
	`, status, nullString(videoURL), nullString(errMsg), time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New("export not found")
	}
	return nil
}

func (r *SQLiteRepository) ListExports(ctx context.Context, sessionID string, limit int) ([]*ExportRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, status, video_url, error, created_at, updated_at
		FROM exports WHERE session_id = ? ORDER BY created_at DESC LIMIT ?
	`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ExportRecord
	for rows.Next() {
		var rec ExportRecord
		var videoURL, errMsg sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Status, &videoURL, &errMsg, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		rec.VideoURL = videoURL.String
		rec.Error = errMsg.String
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"robojobs/youtube"
)

const uploadsSchema = `CREATE TABLE IF NOT EXISTS youtube_uploads (
	video_id    TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	privacy     TEXT NOT NULL,
	local_path  TEXT NOT NULL,
	uploaded_at TIMESTAMPTZ NOT NULL
)`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// HistoryRepository persists uploads into Postgres.
type HistoryRepository struct {
	db *sql.DB
}

var _ youtube.HistoryStore = (*HistoryRepository)(nil)

// OpenHistory connects to the database at url and ensures the table exists
func OpenHistory(ctx context.Context, url string) (*HistoryRepository, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	repo := NewHistoryRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// NewHistoryRepository wires a sql.DB implementation.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// EnsureSchema creates the uploads table
func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, uploadsSchema); err != nil {
		return fmt.Errorf("create uploads table: %w", err)
	}
	return nil
}

// RecordUpload upserts one upload
func (r *HistoryRepository) RecordUpload(ctx context.Context, u youtube.Upload) error {
	if r.db == nil {
		return nil
	}
	query, args, err := insertUpload(u).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

// Uploaded returns which of the given local paths have been uploaded.
func (r *HistoryRepository) Uploaded(ctx context.Context, paths []string) (map[string]bool, error) {
	if r.db == nil || len(paths) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := uploadedPaths(paths).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query uploaded: %w", err)
	}
	defer rows.Close()

	result := make(map[string]bool)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan path: %w", err)
		}
		result[p] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}

// Recent returns the newest uploads first
func (r *HistoryRepository) Recent(ctx context.Context, limit uint64) ([]youtube.Upload, error) {
	if r.db == nil {
		return nil, nil
	}

	query, args, err := recentUploads(limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	var uploads []youtube.Upload
	for rows.Next() {
		var (
			u  youtube.Upload
			at time.Time
		)
		if err := rows.Scan(&u.VideoID, &u.Title, &u.Privacy, &u.LocalPath, &at); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		u.UploadTime = at.Format(time.RFC3339)
		uploads = append(uploads, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return uploads, nil
}

// Close releases the connection pool
func (r *HistoryRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func insertUpload(u youtube.Upload) sq.InsertBuilder {
	at, err := time.Parse(time.RFC3339, u.UploadTime)
	if err != nil {
		at = time.Now().UTC()
	}
	return psql.Insert("youtube_uploads").
		Columns("video_id", "title", "privacy", "local_path", "uploaded_at").
		Values(u.VideoID, u.Title, u.Privacy, u.LocalPath, at).
		Suffix("ON CONFLICT (video_id) DO UPDATE SET title = EXCLUDED.title, privacy = EXCLUDED.privacy")
}

func uploadedPaths(paths []string) sq.SelectBuilder {
	return psql.Select("local_path").
		From("youtube_uploads").
		Where("local_path = ANY(?)", pq.StringArray(paths))
}

func recentUploads(limit uint64) sq.SelectBuilder {
	return psql.Select("video_id", "title", "privacy", "local_path", "uploaded_at").
		From("youtube_uploads").
		OrderBy("uploaded_at DESC").
		Limit(limit)
}

package persistence

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MimeLyc/bilingual-news/internal/jobs"
	"github.com/MimeLyc/bilingual-news/internal/news"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// SQLiteStore implements news.Store and jobs.Store.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ news.Store = (*SQLiteStore)(nil)
	_ jobs.Store = (*SQLiteStore)(nil)
)

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := store.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version := migrationVersion(entry.Name())
		if version <= 0 {
			continue
		}
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if exists > 0 {
			continue
		}
		// embed.FS paths always use forward slashes.
		content, err := migrationFiles.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// migrationVersion extracts the leading integer from a migration filename (e.g. "001_init.sql" → 1).
func migrationVersion(name string) int {
	for i, c := range name {
		if c < '0' || c > '9' {
			if i == 0 {
				return 0
			}
			n, _ := strconv.Atoi(name[:i])
			return n
		}
	}
	n, _ := strconv.Atoi(name)
	return n
}

const articleColumns = `id, english_title, english_content, english_tags_json, telugu_title, telugu_content, telugu_tags_json,
	original_link, image_url, source, category, source_language, is_auto_translated, needs_translation, is_published,
	views, published_at, created_at`

// CreateArticle normalizes, validates and inserts a. On success a.ID and
// a.CreatedAt are set.
func (s *SQLiteStore) CreateArticle(ctx context.Context, a *news.Article) error {
	if a == nil {
		return fmt.Errorf("article is nil")
	}
	a.Normalize()
	if err := a.Validate(); err != nil {
		return err
	}

	englishTags, err := json.Marshal(a.EnglishTags)
	if err != nil {
		return err
	}
	teluguTags, err := json.Marshal(a.TeluguTags)
	if err != nil {
		return err
	}
	now := s.now()
	if a.PublishedAt.IsZero() {
		a.PublishedAt = now
	}
	a.CreatedAt = now

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO articles (
			english_title, english_content, english_tags_json, telugu_title, telugu_content, telugu_tags_json,
			original_link, image_url, source, category, source_language, is_auto_translated, needs_translation,
			is_published, views, published_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.EnglishTitle,
		a.EnglishContent,
		string(englishTags),
		a.TeluguTitle,
		a.TeluguContent,
		string(teluguTags),
		a.OriginalLink,
		a.ImageURL,
		a.Source,
		string(a.Category),
		a.SourceLanguage,
		boolToInt(a.IsAutoTranslated),
		boolToInt(a.NeedsTranslation),
		boolToInt(a.IsPublished),
		a.Views,
		a.PublishedAt.UTC(),
		a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return news.ErrDuplicateLink
		}
		return fmt.Errorf("insert article: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read article id: %w", err)
	}
	a.ID = id
	return nil
}

func (s *SQLiteStore) GetArticle(ctx context.Context, id int64) (*news.Article, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	a, err := scanArticle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, news.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// ListArticles returns articles newest first. Limit <= 0 means no limit.
func (s *SQLiteStore) ListArticles(ctx context.Context, opts news.ListOptions) ([]*news.Article, error) {
	var where []string
	var args []any
	if !opts.IncludeUnpublished {
		where = append(where, "is_published = 1")
	}
	if opts.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(opts.Category))
	}

	query := `SELECT ` + articleColumns + ` FROM articles`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	offset := max(opts.Offset, 0)
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	return s.queryArticles(ctx, query, args...)
}

func (s *SQLiteStore) IncrementViews(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE articles SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListArticlesNeedingTranslation returns the oldest articles still carrying
// fallback translations.
func (s *SQLiteStore) ListArticlesNeedingTranslation(ctx context.Context, limit int) ([]*news.Article, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.queryArticles(
		ctx,
		`SELECT `+articleColumns+` FROM articles WHERE needs_translation = 1 ORDER BY created_at ASC, id ASC LIMIT ?`,
		limit,
	)
}

func (s *SQLiteStore) UpdateArticleTranslation(ctx context.Context, id int64, update news.TranslationUpdate) error {
	a := news.Article{
		EnglishTitle:   update.EnglishTitle,
		EnglishContent: update.EnglishContent,
		EnglishTags:    update.EnglishTags,
		TeluguTitle:    update.TeluguTitle,
		TeluguContent:  update.TeluguContent,
		TeluguTags:     update.TeluguTags,
	}
	a.Normalize()
	if err := a.Validate(); err != nil {
		return err
	}
	englishTags, err := json.Marshal(a.EnglishTags)
	if err != nil {
		return err
	}
	teluguTags, err := json.Marshal(a.TeluguTags)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE articles SET
			english_title = ?, english_content = ?, english_tags_json = ?,
			telugu_title = ?, telugu_content = ?, telugu_tags_json = ?,
			is_auto_translated = 1, needs_translation = ?
		 WHERE id = ?`,
		a.EnglishTitle,
		a.EnglishContent,
		string(englishTags),
		a.TeluguTitle,
		a.TeluguContent,
		string(teluguTags),
		boolToInt(update.NeedsTranslation),
		id,
	)
	if err != nil {
		return fmt.Errorf("update article %d: %w", id, err)
	}
	return requireRow(res)
}

func (s *SQLiteStore) queryArticles(ctx context.Context, query string, args ...any) ([]*news.Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]*news.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*news.Article, error) {
	var a news.Article
	var englishTags, teluguTags, category string
	var autoTranslated, needsTranslation, published int
	if err := row.Scan(
		&a.ID,
		&a.EnglishTitle,
		&a.EnglishContent,
		&englishTags,
		&a.TeluguTitle,
		&a.TeluguContent,
		&teluguTags,
		&a.OriginalLink,
		&a.ImageURL,
		&a.Source,
		&category,
		&a.SourceLanguage,
		&autoTranslated,
		&needsTranslation,
		&published,
		&a.Views,
		&a.PublishedAt,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(englishTags), &a.EnglishTags); err != nil {
		return nil, fmt.Errorf("decode english tags of article %d: %w", a.ID, err)
	}
	if err := json.Unmarshal([]byte(teluguTags), &a.TeluguTags); err != nil {
		return nil, fmt.Errorf("decode telugu tags of article %d: %w", a.ID, err)
	}
	a.Category = news.Category(category)
	a.IsAutoTranslated = autoTranslated == 1
	a.NeedsTranslation = needsTranslation == 1
	a.IsPublished = published == 1
	return &a, nil
}

func (s *SQLiteStore) LoadJobs(ctx context.Context) ([]*jobs.RetranslationJob, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, source, dedupe_key, article_id, direction, status, error, created_at, updated_at
		 FROM jobs
		 ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]*jobs.RetranslationJob, 0)
	for rows.Next() {
		var item jobs.RetranslationJob
		var status string
		if err := rows.Scan(
			&item.ID,
			&item.Source,
			&item.DedupeKey,
			&item.Payload.ArticleID,
			&item.Payload.Direction,
			&status,
			&item.Error,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		item.Status = jobs.Status(status)
		ret = append(ret, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *SQLiteStore) DeleteJob(ctx context.Context, jobID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, jobID)
	return err
}

func (s *SQLiteStore) UpsertJob(ctx context.Context, job *jobs.RetranslationJob) error {
	if job == nil {
		return fmt.Errorf("job is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (
			id, source, dedupe_key, article_id, direction, status, error, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source=excluded.source,
			dedupe_key=excluded.dedupe_key,
			article_id=excluded.article_id,
			direction=excluded.direction,
			status=excluded.status,
			error=excluded.error,
			updated_at=excluded.updated_at`,
		job.ID,
		job.Source,
		job.DedupeKey,
		job.Payload.ArticleID,
		job.Payload.Direction,
		string(job.Status),
		job.Error,
		job.CreatedAt.UTC(),
		job.UpdatedAt.UTC(),
	)
	return err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return news.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

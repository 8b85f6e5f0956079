package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/MimeLyc/bilingual-news/internal/jobs"
	"github.com/MimeLyc/bilingual-news/internal/news"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "news.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleArticle(title string) *news.Article {
	return &news.Article{
		EnglishTitle:   title,
		EnglishContent: "Content of " + title,
		EnglishTags:    []string{"politics", " policy "},
		TeluguTitle:    "శీర్షిక",
		TeluguContent:  "విషయం",
		TeluguTags:     []string{"రాజకీయం"},
		IsPublished:    true,
	}
}

func TestSQLiteStore_ArticleRoundTrip(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	a := sampleArticle("PM announces policy")
	a.Category = news.CategoryPolitics
	a.OriginalLink = "https://example.com/pm"
	require.NoError(t, store.CreateArticle(ctx, a))
	require.NotZero(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())

	got, err := store.GetArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "PM announces policy", got.EnglishTitle)
	assert.Equal(t, []string{"politics", "policy"}, got.EnglishTags)
	assert.Equal(t, []string{"రాజకీయం"}, got.TeluguTags)
	assert.Equal(t, news.CategoryPolitics, got.Category)
	assert.Equal(t, news.LanguageEnglish, got.SourceLanguage)
	assert.True(t, got.IsPublished)
	assert.WithinDuration(t, a.CreatedAt, got.CreatedAt, time.Second)
}

func TestSQLiteStore_CreateRejectsInvalid(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	err := store.CreateArticle(context.Background(), &news.Article{EnglishTitle: "only english"})
	var vErr *news.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Fields, "teluguTitle")
}

func TestSQLiteStore_DuplicateLink(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	first := sampleArticle("one")
	first.OriginalLink = "https://example.com/a"
	require.NoError(t, store.CreateArticle(ctx, first))

	second := sampleArticle("two")
	second.OriginalLink = "https://example.com/a"
	assert.ErrorIs(t, store.CreateArticle(ctx, second), news.ErrDuplicateLink)

	// Empty links are not unique.
	require.NoError(t, store.CreateArticle(ctx, sampleArticle("three")))
	require.NoError(t, store.CreateArticle(ctx, sampleArticle("four")))
}

func TestSQLiteStore_ListNewestFirst(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for _, title := range []string{"first", "second", "third"} {
		require.NoError(t, store.CreateArticle(ctx, sampleArticle(title)))
	}
	draft := sampleArticle("draft")
	draft.IsPublished = false
	require.NoError(t, store.CreateArticle(ctx, draft))
	sports := sampleArticle("sports")
	sports.Category = news.CategorySports
	require.NoError(t, store.CreateArticle(ctx, sports))

	list, err := store.ListArticles(ctx, news.ListOptions{})
	require.NoError(t, err)
	titles := make([]string, 0, len(list))
	for _, a := range list {
		titles = append(titles, a.EnglishTitle)
	}
	assert.Equal(t, []string{"sports", "third", "second", "first"}, titles)

	page, err := store.ListArticles(ctx, news.ListOptions{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "third", page[0].EnglishTitle)

	onlySports, err := store.ListArticles(ctx, news.ListOptions{Category: news.CategorySports})
	require.NoError(t, err)
	require.Len(t, onlySports, 1)

	all, err := store.ListArticles(ctx, news.ListOptions{IncludeUnpublished: true})
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	_, err := store.GetArticle(context.Background(), 999)
	assert.ErrorIs(t, err, news.ErrNotFound)
	assert.ErrorIs(t, store.IncrementViews(context.Background(), 999), news.ErrNotFound)
}

func TestSQLiteStore_IncrementViews(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	a := sampleArticle("viewed")
	require.NoError(t, store.CreateArticle(ctx, a))
	require.NoError(t, store.IncrementViews(ctx, a.ID))
	require.NoError(t, store.IncrementViews(ctx, a.ID))

	got, err := store.GetArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Views)
}

func TestSQLiteStore_TranslationBacklog(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	pending := sampleArticle("fallback")
	pending.NeedsTranslation = true
	pending.IsAutoTranslated = true
	require.NoError(t, store.CreateArticle(ctx, pending))
	require.NoError(t, store.CreateArticle(ctx, sampleArticle("fine")))

	backlog, err := store.ListArticlesNeedingTranslation(ctx, 10)
	require.NoError(t, err)
	require.Len(t, backlog, 1)
	assert.Equal(t, pending.ID, backlog[0].ID)

	require.NoError(t, store.UpdateArticleTranslation(ctx, pending.ID, news.TranslationUpdate{
		EnglishTitle:   "fallback",
		EnglishContent: "Content of fallback",
		EnglishTags:    []string{"news"},
		TeluguTitle:    "కొత్త శీర్షిక",
		TeluguContent:  "కొత్త విషయం",
		TeluguTags:     []string{"వార్తలు"},
	}))

	backlog, err = store.ListArticlesNeedingTranslation(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, backlog)

	got, err := store.GetArticle(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, "కొత్త శీర్షిక", got.TeluguTitle)
	assert.Equal(t, []string{"వార్తలు"}, got.TeluguTags)
	assert.False(t, got.NeedsTranslation)

	err = store.UpdateArticleTranslation(ctx, 12345, news.TranslationUpdate{
		EnglishTitle: "x", EnglishContent: "x", TeluguTitle: "x", TeluguContent: "x",
	})
	assert.ErrorIs(t, err, news.ErrNotFound)
}

func TestSQLiteStore_JobsRoundTrip(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	job := &jobs.RetranslationJob{
		ID:        "job-1",
		Source:    "manual",
		DedupeKey: jobs.DedupeKeyForArticle(3),
		Payload:   jobs.JobPayload{ArticleID: 3, Direction: "english-to-telugu"},
		Status:    jobs.StatusPending,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, store.UpsertJob(ctx, job))

	job.Status = jobs.StatusFailed
	job.Error = "boom"
	require.NoError(t, store.UpsertJob(ctx, job))

	all, err := store.LoadJobs(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, job.ID, all[0].ID)
	assert.Equal(t, jobs.StatusFailed, all[0].Status)
	assert.Equal(t, "boom", all[0].Error)
	assert.Equal(t, job.Payload, all[0].Payload)

	require.NoError(t, store.DeleteJob(ctx, job.ID))
	all, err = store.LoadJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "news.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.CreateArticle(context.Background(), sampleArticle("persisted")))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	list, err := reopened.ListArticles(context.Background(), news.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "persisted", list[0].EnglishTitle)
}

func TestMigrationVersion(t *testing.T) {
	assert.Equal(t, 1, migrationVersion("001_init.sql"))
	assert.Equal(t, 12, migrationVersion("12_more.sql"))
	assert.Equal(t, 0, migrationVersion("init.sql"))
}

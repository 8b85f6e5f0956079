package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/MimeLyc/bilingual-news/internal/news"
	"github.com/MimeLyc/bilingual-news/internal/persistence"
	"github.com/MimeLyc/bilingual-news/internal/translator"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *persistence.SQLiteStore {
	t.Helper()
	store, err := persistence.NewSQLiteStore(filepath.Join(t.TempDir(), "news.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func createArticle(t *testing.T, store news.Store, a news.Article) *news.Article {
	t.Helper()
	require.NoError(t, store.CreateArticle(context.Background(), &a))
	return &a
}

func fallbackArticle(title string) news.Article {
	res := translator.Synthesize(translator.Request{
		SourceTitle:   title,
		SourceContent: "The council met on Monday.",
		Direction:     translator.EnglishToTelugu,
	}, translator.DefaultMaxTags)
	return news.Article{
		EnglishTitle:     title,
		EnglishContent:   "The council met on Monday.",
		EnglishTags:      res.SourceTags,
		TeluguTitle:      res.TargetTitle,
		TeluguContent:    res.TargetContent,
		TeluguTags:       res.TargetTags,
		IsPublished:      true,
		NeedsTranslation: true,
	}
}

type fakeTranslator struct {
	mu       sync.Mutex
	requests []translator.Request
	result   translator.Result
	err      error
}

func (f *fakeTranslator) TranslateBidirectional(_ context.Context, req translator.Request) (translator.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.result, f.err
}

func (f *fakeTranslator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

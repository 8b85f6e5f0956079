package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MimeLyc/bilingual-news/internal/jobs"
	"github.com/MimeLyc/bilingual-news/internal/news"
	"github.com/MimeLyc/bilingual-news/internal/translator"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobFor(id int64, source string) *jobs.RetranslationJob {
	return &jobs.RetranslationJob{
		ID:      "job-1",
		Source:  source,
		Payload: jobs.JobPayload{ArticleID: id},
	}
}

func TestExecute_ReplacesFallbackTranslation(t *testing.T) {
	store := newTestStore(t)
	a := createArticle(t, store, fallbackArticle("Council approves budget"))
	tr := &fakeTranslator{result: translator.Result{
		TargetTitle:   "కౌన్సిల్ బడ్జెట్‌ను ఆమోదించింది",
		TargetContent: "సోమవారం కౌన్సిల్ సమావేశమైంది.",
		SourceTags:    []string{"council", "budget"},
		TargetTags:    []string{"బడ్జెట్"},
	}}

	err := NewExecutor(store, tr).Execute(context.Background(), jobFor(a.ID, SourceCron))
	require.NoError(t, err)

	require.Len(t, tr.requests, 1)
	assert.Equal(t, translator.EnglishToTelugu, tr.requests[0].Direction)
	assert.Equal(t, "Council approves budget", tr.requests[0].SourceTitle)

	got, err := store.GetArticle(context.Background(), a.ID)
	require.NoError(t, err)
	assert.False(t, got.NeedsTranslation)
	assert.True(t, got.IsAutoTranslated)
	assert.Equal(t, "కౌన్సిల్ బడ్జెట్‌ను ఆమోదించింది", got.TeluguTitle)
	assert.Equal(t, "Council approves budget", got.EnglishTitle)
	assert.Equal(t, []string{"council", "budget"}, got.EnglishTags)
	assert.Equal(t, []string{"బడ్జెట్"}, got.TeluguTags)
}

func TestExecute_TeluguSourceTranslatesToEnglish(t *testing.T) {
	store := newTestStore(t)
	a := createArticle(t, store, news.Article{
		EnglishTitle:     "[Translation unavailable] హైదరాబాద్‌లో వర్షాలు",
		EnglishContent:   "[Translation unavailable] భారీ వర్షం",
		TeluguTitle:      "హైదరాబాద్‌లో వర్షాలు",
		TeluguContent:    "భారీ వర్షం",
		TeluguTags:       []string{"వర్షం"},
		SourceLanguage:   news.LanguageTelugu,
		NeedsTranslation: true,
	})
	tr := &fakeTranslator{result: translator.Result{
		TargetTitle:   "Rains in Hyderabad",
		TargetContent: "Heavy rain.",
		SourceTags:    []string{"వర్షం"},
		TargetTags:    []string{"rain"},
	}}

	require.NoError(t, NewExecutor(store, tr).Execute(context.Background(), jobFor(a.ID, SourceCron)))
	assert.Equal(t, translator.TeluguToEnglish, tr.requests[0].Direction)
	assert.Equal(t, []string{"వర్షం"}, tr.requests[0].SourceTags)

	got, err := store.GetArticle(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rains in Hyderabad", got.EnglishTitle)
	assert.Equal(t, "హైదరాబాద్‌లో వర్షాలు", got.TeluguTitle)
}

func TestExecute_FallbackKeepsArticlePending(t *testing.T) {
	store := newTestStore(t)
	a := createArticle(t, store, fallbackArticle("Council approves budget"))
	req := translator.Request{SourceTitle: a.EnglishTitle, SourceContent: a.EnglishContent}
	fallback := translator.Synthesize(req, translator.DefaultMaxTags)
	fallback.FallbackReason = "ExternalService: external service failed"
	tr := &fakeTranslator{result: fallback}

	err := NewExecutor(store, tr).Execute(context.Background(), jobFor(a.ID, SourceCron))
	require.Error(t, err)
	assert.False(t, errors.Is(err, jobs.ErrSkip))
	assert.Contains(t, err.Error(), "ExternalService")

	got, err := store.GetArticle(context.Background(), a.ID)
	require.NoError(t, err)
	assert.True(t, got.NeedsTranslation)
	assert.True(t, strings.HasPrefix(got.TeluguTitle, translator.UnavailableMarker(translator.EnglishToTelugu.Target())))
}

func TestExecute_SkipsWhenNothingToDo(t *testing.T) {
	store := newTestStore(t)
	done := fallbackArticle("Already fine")
	done.NeedsTranslation = false
	a := createArticle(t, store, done)
	tr := &fakeTranslator{}
	exec := NewExecutor(store, tr)

	err := exec.Execute(context.Background(), jobFor(a.ID, SourceCron))
	assert.ErrorIs(t, err, jobs.ErrSkip)

	err = exec.Execute(context.Background(), jobFor(404, SourceCron))
	assert.ErrorIs(t, err, jobs.ErrSkip)

	bad := jobFor(a.ID, SourceManual)
	bad.Payload.Direction = "sideways"
	assert.ErrorIs(t, exec.Execute(context.Background(), bad), jobs.ErrSkip)
	assert.Equal(t, 0, tr.calls())
}

func TestExecute_ManualForcesRetranslation(t *testing.T) {
	store := newTestStore(t)
	done := fallbackArticle("Already fine")
	done.NeedsTranslation = false
	a := createArticle(t, store, done)
	tr := &fakeTranslator{result: translator.Result{TargetTitle: "సరే", TargetContent: "విషయం"}}

	require.NoError(t, NewExecutor(store, tr).Execute(context.Background(), jobFor(a.ID, SourceManual)))
	assert.Equal(t, 1, tr.calls())
}

func TestQueueAndExecutor_RecoversWhenServiceReturns(t *testing.T) {
	store := newTestStore(t)
	a := createArticle(t, store, fallbackArticle("Flyover inaugurated"))

	calls := 0
	gen := translator.GeneratorFunc(func(context.Context, string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("service unavailable")
		}
		return `{"teluguTitle":"ఫ్లైఓవర్ ప్రారంభం","teluguContent":"కొత్త ఫ్లైఓవర్ ప్రారంభమైంది","teluguTags":["రవాణా"]}`, nil
	})
	orch := translator.New(gen, translator.WithMaxAttempts(1), translator.WithBaseDelay(0))

	q := jobs.NewQueue(1, store)
	q.Start(NewExecutor(store, orch).Execute)
	defer q.Stop()
	svc := NewRetranslateService(store, q, cron.New(), "*/30 * * * *")

	_, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		list := q.List()
		return len(list) == 1 && list[0].Status == jobs.StatusFailed
	}, 2*time.Second, 10*time.Millisecond)

	created, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	require.Eventually(t, func() bool {
		got, err := store.GetArticle(context.Background(), a.ID)
		return err == nil && !got.NeedsTranslation
	}, 2*time.Second, 10*time.Millisecond)

	got, err := store.GetArticle(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "ఫ్లైఓవర్ ప్రారంభం", got.TeluguTitle)
	assert.Equal(t, []string{"రవాణా"}, got.TeluguTags)
}

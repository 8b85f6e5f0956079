package service

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/MimeLyc/bilingual-news/internal/jobs"
	"github.com/MimeLyc/bilingual-news/internal/news"
	"github.com/MimeLyc/bilingual-news/pkg/log"
	"github.com/robfig/cron/v3"
)

const (
	SourceCron   = "cron"
	SourceManual = "manual"

	defaultBatchSize = 20
)

type jobQueue interface {
	Enqueue(req jobs.EnqueueRequest) (*jobs.RetranslationJob, bool)
}

// RetranslateService periodically enqueues articles that were published with
// fallback content so the workers can try the translation again.
type RetranslateService struct {
	store     news.Store
	queue     jobQueue
	cron      *cron.Cron
	batchSize int

	mu       sync.Mutex
	cronExpr string
	entryID  cron.EntryID
	ctx      context.Context

	group singleflight.Group
}

type Option func(*RetranslateService)

func WithBatchSize(n int) Option {
	return func(s *RetranslateService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func NewRetranslateService(store news.Store, queue jobQueue, c *cron.Cron, cronExpr string, opts ...Option) *RetranslateService {
	s := &RetranslateService{
		store:     store,
		queue:     queue,
		cron:      c,
		cronExpr:  cronExpr,
		batchSize: defaultBatchSize,
		ctx:       context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule registers the periodic run on the cron engine. ctx bounds every
// triggered run.
func (s *RetranslateService) Schedule(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctx = ctx
	log.Info("Scheduling retranslation with cron %q", s.cronExpr)
	return s.addEntryLocked(s.cronExpr)
}

// Reschedule swaps the cron expression of an already scheduled service.
func (s *RetranslateService) Reschedule(cronExpr string) error {
	if _, err := cron.ParseStandard(cronExpr); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cronExpr == s.cronExpr && s.entryID != 0 {
		return nil
	}
	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
		s.entryID = 0
	}
	s.cronExpr = cronExpr
	log.Info("Rescheduled retranslation with cron %q", cronExpr)
	return s.addEntryLocked(cronExpr)
}

func (s *RetranslateService) CronExpr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cronExpr
}

func (s *RetranslateService) addEntryLocked(cronExpr string) error {
	if s.cron == nil {
		return fmt.Errorf("cron engine is not configured")
	}
	ctx := s.ctx
	id, err := s.cron.AddFunc(cronExpr, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			log.Error("Retranslation run failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	s.entryID = id
	return nil
}

// RunOnce enqueues up to one batch of articles that still need translation
// and reports how many new jobs were created. Concurrent calls share one run.
func (s *RetranslateService) RunOnce(ctx context.Context) (int, error) {
	v, err, _ := s.group.Do("run", func() (any, error) {
		return s.run(ctx)
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (s *RetranslateService) run(ctx context.Context) (int, error) {
	articles, err := s.store.ListArticlesNeedingTranslation(ctx, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list articles needing translation: %w", err)
	}

	created := 0
	for _, article := range articles {
		if _, ok := s.enqueue(article.ID, SourceCron); ok {
			created++
		}
	}
	log.Info("Retranslation run: %d articles pending, %d jobs enqueued", len(articles), created)
	return created, nil
}

// EnqueueArticle queues a manual retranslation of one article.
func (s *RetranslateService) EnqueueArticle(ctx context.Context, articleID int64) (*jobs.RetranslationJob, bool, error) {
	if articleID <= 0 {
		return nil, false, fmt.Errorf("article id must be positive")
	}
	if _, err := s.store.GetArticle(ctx, articleID); err != nil {
		return nil, false, err
	}
	job, created := s.enqueue(articleID, SourceManual)
	return job, created, nil
}

// A manual request takes over a pending cron job so the executor forces it.
func (s *RetranslateService) enqueue(articleID int64, source string) (*jobs.RetranslationJob, bool) {
	return s.queue.Enqueue(jobs.EnqueueRequest{
		Source:    source,
		DedupeKey: jobs.DedupeKeyForArticle(articleID),
		Payload:   jobs.JobPayload{ArticleID: articleID},
		Promote:   source == SourceManual,
	})
}

package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/MimeLyc/bilingual-news/internal/config"
	"github.com/MimeLyc/bilingual-news/internal/jobs"
	"github.com/MimeLyc/bilingual-news/internal/news"
	"github.com/MimeLyc/bilingual-news/internal/translator"
)

const serviceName = "Bilingual News API"

// newsTranslator is the slice of translator.Orchestrator the routes use.
type newsTranslator interface {
	GenerateTags(ctx context.Context, title, content string, direction translator.Direction) []string
	TranslateBidirectional(ctx context.Context, req translator.Request) (translator.Result, error)
}

type retranslator interface {
	EnqueueArticle(ctx context.Context, articleID int64) (*jobs.RetranslationJob, bool, error)
	CronExpr() string
}

type runtimeSettingsStore interface {
	GetRuntimeSettings() (config.RuntimeSettings, error)
	UpdateRuntimeSettings(next config.RuntimeSettings) (config.RuntimeSettings, error)
}

type runtimeSettingsApplier func(next config.RuntimeSettings) error

type Server struct {
	store       news.Store
	translator  newsTranslator
	queue       *jobs.Queue
	retranslate retranslator
	settings    runtimeSettingsStore
	apply       runtimeSettingsApplier
	now         func() time.Time
	corsOrigin  string

	mux    *http.ServeMux
	server *http.Server
}

type Option func(*Server)

func WithRetranslator(r retranslator) Option {
	return func(s *Server) {
		s.retranslate = r
	}
}

func WithRuntimeSettingsStore(store runtimeSettingsStore) Option {
	return func(s *Server) {
		s.settings = store
	}
}

func WithRuntimeSettingsApplier(apply runtimeSettingsApplier) Option {
	return func(s *Server) {
		s.apply = apply
	}
}

// WithCORSOrigin sets the Access-Control-Allow-Origin value. Empty keeps "*".
func WithCORSOrigin(origin string) Option {
	return func(s *Server) {
		if origin != "" {
			s.corsOrigin = origin
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

func NewServer(store news.Store, tr newsTranslator, queue *jobs.Queue, opts ...Option) *Server {
	s := &Server{
		store:      store,
		translator: tr,
		queue:      queue,
		now:        time.Now,
		corsOrigin: "*",
		mux:        http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return withCORS(s.corsOrigin, s.mux)
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/news/generate-english-tags", s.handleGenerateTags(translator.EnglishToTelugu))
	s.mux.HandleFunc("/api/news/generate-telugu-tags", s.handleGenerateTags(translator.TeluguToEnglish))
	s.mux.HandleFunc("/api/news/auto-translate", s.handleTranslate(translator.EnglishToTelugu))
	s.mux.HandleFunc("/api/news/auto-translate-telugu-to-english", s.handleTranslate(translator.TeluguToEnglish))
	s.mux.HandleFunc("/api/news", s.handleNews)
	s.mux.HandleFunc("/api/news/", s.handleNewsByID)
	s.mux.HandleFunc("/api/jobs", s.handleJobs)
	s.mux.HandleFunc("/api/jobs/", s.handleJobByID)
	s.mux.HandleFunc("/api/jobs/stream", s.handleJobStream)
	s.mux.HandleFunc("/api/jobs/retranslate", s.handleRetranslate)
	s.mux.HandleFunc("/api/jobs/schedule", s.handleSchedule)
	s.mux.HandleFunc("/api/settings", s.handleSettings)
}

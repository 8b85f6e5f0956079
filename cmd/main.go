package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/MimeLyc/bilingual-news/internal/config"
	"github.com/MimeLyc/bilingual-news/internal/httpapi"
	"github.com/MimeLyc/bilingual-news/internal/jobs"
	"github.com/MimeLyc/bilingual-news/internal/llm"
	"github.com/MimeLyc/bilingual-news/internal/persistence"
	"github.com/MimeLyc/bilingual-news/internal/service"
	"github.com/MimeLyc/bilingual-news/internal/translator"
	"github.com/MimeLyc/bilingual-news/pkg/log"
)

const shutdownTimeout = 10 * time.Second

type scheduler interface {
	Schedule(ctx context.Context) error
}

type cronEngine interface {
	Start()
	Stop() context.Context
}

type httpServer interface {
	ListenAndServe(addr string) error
	Shutdown(ctx context.Context) error
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("Failed to load .env: %v", err)
	}
	log.InitLogger(log.ParseLevel(os.Getenv("LOG_LEVEL")))

	settingsPath := config.RuntimeSettingsFilePath()
	var opts []config.Option
	if settings, err := config.LoadRuntimeSettingsFile(settingsPath); err == nil {
		opts = append(opts, config.WithRuntimeSettings(settings))
	} else if !errors.Is(err, fs.ErrNotExist) {
		log.Warn("Ignoring runtime settings file %s: %v", settingsPath, err)
	}

	cfg, err := config.NewFromEnv(opts...)
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}

	if err := os.MkdirAll(cfg.System.DataDir, 0o755); err != nil {
		log.Fatal("Failed to create data dir %s: %v", cfg.System.DataDir, err)
	}
	store, err := persistence.NewSQLiteStore(cfg.DBPath())
	if err != nil {
		log.Fatal("Failed to open store: %v", err)
	}
	defer store.Close()

	client, err := newGenerator(cfg.LLM)
	if err != nil {
		log.Fatal("Failed to create LLM client: %v", err)
	}
	generator := llm.NewSwappable(client)

	orch := translator.New(
		generator,
		translator.WithMaxAttempts(cfg.Translate.MaxAttempts),
		translator.WithBaseDelay(cfg.Translate.BaseDelay),
		translator.WithAttemptTimeout(cfg.Translate.AttemptTimeout),
		translator.WithMaxTags(cfg.Translate.MaxTags),
		translator.WithSink(translator.LogSink{}),
	)

	queue := jobs.NewQueue(cfg.Retranslate.Workers, store)
	queue.Start(service.NewExecutor(store, orch).Execute)
	defer queue.Stop()

	cronRunner := cron.New()
	retranslate := service.NewRetranslateService(
		store,
		queue,
		cronRunner,
		cfg.Retranslate.CronExpr,
		service.WithBatchSize(cfg.Retranslate.BatchSize),
	)

	settingsStore, err := config.NewRuntimeSettingsStore(settingsPath, cfg.RuntimeSettings())
	if err != nil {
		log.Fatal("Failed to create runtime settings store: %v", err)
	}
	applySettings := func(next config.RuntimeSettings) error {
		client, err := newGenerator(next.Apply(cfg.LLM))
		if err != nil {
			return err
		}
		if err := retranslate.Reschedule(next.CronExpr); err != nil {
			return err
		}
		generator.Swap(client)
		log.Info("Applied runtime settings: provider=%s model=%s cron=%q", next.LLMProvider, next.LLMModel, next.CronExpr)
		return nil
	}

	srv := httpapi.NewServer(
		store,
		orch,
		queue,
		httpapi.WithRetranslator(retranslate),
		httpapi.WithRuntimeSettingsStore(settingsStore),
		httpapi.WithRuntimeSettingsApplier(applySettings),
		httpapi.WithCORSOrigin(cfg.HTTP.CORSOrigin),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runWithComponents(ctx, cfg, retranslate, cronRunner, srv); err != nil {
		log.Error("Server stopped: %v", err)
		os.Exit(1)
	}
	log.Info("Server stopped")
}

func newGenerator(cfg config.LLMConfig) (*llm.Client, error) {
	clientCfg, err := cfg.ClientConfig()
	if err != nil {
		return nil, err
	}
	return llm.NewClient(clientCfg)
}

// runWithComponents schedules retranslation, starts cron and serves HTTP
// until ctx is cancelled or the server fails.
func runWithComponents(
	ctx context.Context,
	cfg *config.Config,
	sched scheduler,
	engine cronEngine,
	srv httpServer,
) error {
	if err := sched.Schedule(ctx); err != nil {
		return fmt.Errorf("schedule retranslation: %w", err)
	}
	engine.Start()
	defer engine.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening on %s", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(cfg.HTTP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/greenroute/backend/internal/ai"
	"github.com/greenroute/backend/internal/chat"
	"github.com/greenroute/backend/internal/config"
	"github.com/greenroute/backend/internal/db"
	"github.com/greenroute/backend/internal/events"
	"github.com/greenroute/backend/internal/geocode"
	httpapi "github.com/greenroute/backend/internal/http"
	"github.com/greenroute/backend/internal/http/handlers"
	"github.com/greenroute/backend/internal/knowledge"
	"github.com/greenroute/backend/internal/seed"
	"github.com/greenroute/backend/internal/service"
)

const sweepInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := log.Level(level).With().Str("service", "dispatch-backend").Str("env", cfg.Env).Logger()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store := db.NewMemStore()
	if cfg.SeedDemo {
		sum, err := seed.Load(ctx, store, seed.Demo(), time.Now().UTC())
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to seed demo data")
		}
		logger.Info().Int("workers", sum.Workers).Int("sites", sum.Sites).Int("customers", sum.Customers).Msg("demo data loaded")
	}

	checks := map[string]handlers.Pinger{}
	hub := events.NewHub(logger)
	sinks := events.Fanout{events.LogSink{Logger: logger}, hub}

	var archive *db.EventArchive
	if cfg.DatabaseURL != "" {
		archive, err = db.NewEventArchive(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect db")
		}
		defer archive.Close()
		if err := archive.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate event archive")
		}
		sinks = append(sinks, archive)
		checks["postgres"] = archive
	}
	if cfg.RedisAddr != "" {
		rs := events.NewRedisSink(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.EventsChannel)
		defer rs.Close()
		if err := rs.Ping(ctx); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, events will retry per publish")
		}
		sinks = append(sinks, rs)
		checks["redis"] = rs
	}
	bus := events.NewBus(sinks, logger, cfg.EventsBuffer)

	var assistant ai.Assistant
	if cfg.AssistantBaseURL != "" {
		assistant = ai.NewOpenAICompatAssistant(cfg.AssistantBaseURL, cfg.AssistantModel, cfg.AssistantAPIKey, cfg.AssistantMaxTokens)
	}
	advisor := buildAdvisor(cfg, assistant, logger)

	kb := knowledge.New()
	geocoder := &geocode.NominatimGeocoder{
		BaseURL:     cfg.GeocoderURL,
		UserAgent:   cfg.GeocoderUserAgent,
		MinInterval: time.Second,
	}

	lifecycle := &service.LifecycleService{Store: store, Customers: store, Events: bus, Logger: logger}
	h := &handlers.Handler{
		Store: store,
		Ranker: &service.Ranker{
			Store:           store,
			Knowledge:       kb,
			Advisor:         advisor,
			AdvisoryTimeout: cfg.AdvisoryTimeout,
			AdvisoryRetries: cfg.AdvisoryRetries,
			AdvisoryBackoff: cfg.AdvisoryBackoff,
			Logger:          logger,
		},
		Assignments: &service.AssignmentService{Store: store, Events: bus, Logger: logger},
		Lifecycle:   lifecycle,
		Sites: &service.SiteService{
			Store:    store,
			Geocoder: geocoder,
			Country:  cfg.CountryDefault,
			Events:   bus,
			Logger:   logger,
		},
		Knowledge: kb,
		ChatService: &chat.Service{
			Assistant: assistant,
			Store:     store,
			History:   chat.NewHistory(cfg.ChatHistoryTurns),
			Logger:    logger,
		},
		Hub:       hub,
		Checks:    checks,
		Validator: validator.New(),
		Logger:    logger,
	}
	if archive != nil {
		h.Archive = archive
	}

	go sweepOverdue(ctx, lifecycle, logger)

	router := httpapi.Router(cfg, h)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("advisory_mode", cfg.AdvisoryMode).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	stop()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	bus.Close()
	logger.Info().Msg("server stopped")
}

func buildAdvisor(cfg config.Config, assistant ai.Assistant, logger zerolog.Logger) ai.Advisor {
	switch cfg.AdvisoryMode {
	case config.AdvisoryHTTP:
		return ai.HTTPAdvisor{BaseURL: cfg.AdvisoryURL}
	case config.AdvisoryLLM:
		return ai.LLMAdvisor{Assistant: assistant}
	case config.AdvisoryMock:
		logger.Info().Msg("using mock advisory recommender")
		return ai.MockAdvisor{ModelVersion: "mock-v1"}
	default:
		return nil
	}
}

func sweepOverdue(ctx context.Context, lifecycle *service.LifecycleService, logger zerolog.Logger) {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if _, err := lifecycle.SweepOverdue(ctx, now.UTC()); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("overdue sweep failed")
			}
		}
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/slzapp/slz-dashboard/backend/internal/api"
	"github.com/slzapp/slz-dashboard/backend/internal/config"
	"github.com/slzapp/slz-dashboard/backend/internal/counter"
	"github.com/slzapp/slz-dashboard/backend/internal/fub"
	"github.com/slzapp/slz-dashboard/backend/internal/pipeline"
	"github.com/slzapp/slz-dashboard/backend/internal/ranking"
	"github.com/slzapp/slz-dashboard/backend/internal/scheduler"
	"github.com/slzapp/slz-dashboard/backend/internal/selection"
	"github.com/slzapp/slz-dashboard/backend/internal/storage"
	"github.com/slzapp/slz-dashboard/backend/internal/types"
	"github.com/slzapp/slz-dashboard/backend/pkg/middleware"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Int("schedule_hour", cfg.ScheduleHour).
		Str("schedule_tz", cfg.ScheduleTZ.String()).
		Msg("starting SLZ dashboard server")

	// Create context for services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create daily log store
	store, err := storage.NewStore(ctx, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create store")
	}

	// Create selection store
	selections := selection.NewFileStore(cfg.SelectionsFile, log.Logger)

	// Create FollowUpBoss client
	fubClient := fub.NewClient(fub.Config{
		BaseURL:   cfg.FUBBaseURL,
		APIKey:    cfg.FUBAPIKey,
		SystemKey: cfg.FUBSystemKey,
		System:    cfg.FUBSystem,
	}, log.Logger)

	// Create counting and write-cycle services
	countService := counter.New(fubClient, log.Logger)
	writeCycle := pipeline.New(countService, store, cfg.ScheduleTZ, log.Logger)
	rankingEngine := ranking.New(store, log.Logger)

	// Schedule the daily write-cycle per distinct user timezone
	dailyJob := scheduler.DailyJob(selections, writeCycle, log.Logger)
	sched := scheduler.New(dailyJob, log.Logger)
	entries := scheduler.BuildEntries(fetchScheduleUsers(ctx, fubClient), cfg.ScheduleHour)
	sched.Start(ctx, entries)

	// Create HTTP handlers
	countsHandler := api.NewCountsHandler(countService, writeCycle, selections, log.Logger)
	selectionsHandler := api.NewSelectionsHandler(selections, log.Logger)
	logsHandler := api.NewLogsHandler(store, log.Logger)
	rankingsHandler := api.NewRankingsHandler(rankingEngine, log.Logger)
	directoryHandler := api.NewDirectoryHandler(fubClient, log.Logger)
	appointmentsHandler := api.NewAppointmentsHandler(fubClient, log.Logger)
	columnOrderHandler := api.NewColumnOrderHandler(store, log.Logger)
	metricsHandler := api.NewMetricsHandler(fubClient, store, log.Logger)

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Register public routes
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/agent-smartlist-counts", countsHandler.GetCounts)
		r.Post("/selected-counts", countsHandler.PostSelectedCounts)

		r.Post("/save-selections", selectionsHandler.SaveSelections)
		r.Get("/get-selections", selectionsHandler.GetSelections)

		r.Get("/users", directoryHandler.GetUsers)
		r.Get("/smartlists", directoryHandler.GetSmartLists)
		r.Get("/people", directoryHandler.GetPeople)

		r.Get("/logs", logsHandler.GetDailyLogs)
		r.Get("/daily-logs", logsHandler.GetDailyLogs)
		r.Delete("/daily-logs", logsHandler.DeleteDailyLogs)
		r.Get("/agent-logs/{agentId}", logsHandler.GetAgentLogs)

		r.Get("/daily-rankings", rankingsHandler.GetRankings)

		r.Get("/appointments", appointmentsHandler.GetAppointments)
		r.Get("/appointment-types", appointmentsHandler.GetAppointmentTypes)
		r.Get("/appointment-outcomes", appointmentsHandler.GetAppointmentOutcomes)

		r.Get("/metrics", metricsHandler.GetMetrics)

		r.Post("/save-column-order", columnOrderHandler.SaveColumnOrder)
		r.Get("/get-column-order/{userId}", columnOrderHandler.GetColumnOrder)
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stop the scheduler
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// fetchScheduleUsers enumerates CRM users to derive the scheduler's
// timezone set. When the CRM is unreachable at startup the scheduler
// still runs with a single UTC trigger.
func fetchScheduleUsers(ctx context.Context, client *fub.Client) []types.Agent {
	users, err := client.FetchAgents(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to enumerate users for scheduling, falling back to UTC")
		return nil
	}
	return users
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"slz-dashboard"}`)
}

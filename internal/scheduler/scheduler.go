package scheduler

import (
	"context"
	"fmt"
	"sort"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/slzapp/slz-dashboard/backend/internal/types"
)

// Entry is one scheduled trigger: the daily write-cycle fires at Hour
// local time in Timezone. Entries are plain data so they can be built
// and inspected without a running clock.
type Entry struct {
	Timezone string
	Hour     int
}

// SelectionSource loads the saved agent/smart-list selection.
type SelectionSource interface {
	Load() (types.Selection, error)
}

// WriteCycle runs one daily aggregation and persists the results.
type WriteCycle interface {
	Run(ctx context.Context, agentIDs, smartListIDs []string) (*types.CountsSnapshot, error)
}

// Job is what each trigger executes.
type Job func(ctx context.Context)

// Scheduler fires the daily write-cycle once per distinct user timezone.
type Scheduler struct {
	cron   *cron.Cron
	job    Job
	logger zerolog.Logger
}

// New creates a scheduler that runs job on every trigger.
func New(job Job, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		job:    job,
		logger: logger.With().Str("component", "scheduler").Logger(),
	}
}

// BuildEntries groups users by timezone and produces one Entry per
// distinct zone at the given hour. Users without a timezone fall back
// to UTC. The result is sorted for deterministic registration order.
func BuildEntries(users []types.Agent, hour int) []Entry {
	zones := make(map[string]bool)
	for _, user := range users {
		tz := user.Timezone
		if tz == "" {
			tz = "UTC"
		}
		zones[tz] = true
	}
	if len(zones) == 0 {
		zones["UTC"] = true
	}

	entries := make([]Entry, 0, len(zones))
	for tz := range zones {
		entries = append(entries, Entry{Timezone: tz, Hour: hour})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timezone < entries[j].Timezone
	})
	return entries
}

// Start registers one cron trigger per entry and starts the clock.
// Returns the number of triggers registered; entries with an
// unparseable timezone are skipped with a logged error. The scheduler
// stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context, entries []Entry) int {
	registered := 0
	for _, entry := range entries {
		spec := fmt.Sprintf("CRON_TZ=%s 0 %d * * *", entry.Timezone, entry.Hour)
		_, err := s.cron.AddFunc(spec, func() {
			s.job(context.Background())
		})
		if err != nil {
			s.logger.Error().Err(err).Str("timezone", entry.Timezone).Msg("failed to schedule daily trigger")
			continue
		}
		s.logger.Info().Str("timezone", entry.Timezone).Int("hour", entry.Hour).Msg("daily trigger scheduled")
		registered++
	}

	s.cron.Start()
	go func() {
		<-ctx.Done()
		s.cron.Stop()
		s.logger.Info().Msg("scheduler stopped")
	}()

	return registered
}

// DailyJob builds the job each trigger runs: load the current saved
// selection and execute the shared write-cycle with it. Which agents
// and lists are aggregated is global; only the firing time is
// per-timezone.
func DailyJob(selections SelectionSource, cycle WriteCycle, logger zerolog.Logger) Job {
	jobLogger := logger.With().Str("component", "daily_job").Logger()
	return func(ctx context.Context) {
		sel, err := selections.Load()
		if err != nil {
			jobLogger.Error().Err(err).Msg("failed to load selections for daily run")
			return
		}

		if _, err := cycle.Run(ctx, sel.AgentIDs, sel.SmartListIDs); err != nil {
			jobLogger.Error().Err(err).Msg("daily write-cycle failed")
			return
		}

		jobLogger.Info().
			Int("agents", len(sel.AgentIDs)).
			Int("smart_lists", len(sel.SmartListIDs)).
			Msg("daily write-cycle completed")
	}
}

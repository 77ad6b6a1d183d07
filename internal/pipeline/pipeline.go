package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/slzapp/slz-dashboard/backend/internal/storage"
	"github.com/slzapp/slz-dashboard/backend/internal/types"
)

// CountsComputer computes the agent/smart-list count matrix.
type CountsComputer interface {
	ComputeCounts(ctx context.Context, agentIDs, smartListIDs []string) (*types.CountsSnapshot, error)
}

// Pipeline runs the daily write-cycle: compute the count matrix, clear
// the target day's log entries, then insert one fresh entry per agent.
// Re-running for the same day replaces that day's data instead of
// accumulating duplicates. The delete and the inserts are not a single
// transaction: a failure mid-batch leaves the day partially written and
// the error is surfaced to the caller, no retry.
type Pipeline struct {
	counter CountsComputer
	store   storage.Store
	tz      *time.Location
	now     func() time.Time
	logger  zerolog.Logger
}

// New creates a Pipeline. Log entries are dated with the midnight of
// the given timezone's current day.
func New(counter CountsComputer, store storage.Store, tz *time.Location, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		counter: counter,
		store:   store,
		tz:      tz,
		now:     time.Now,
		logger:  logger.With().Str("component", "pipeline").Logger(),
	}
}

// DayWindow returns the [start, end) bounds of the calendar day
// containing t, in t's location.
func DayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// Run executes one write-cycle for the given selection and returns the
// computed snapshot.
func (p *Pipeline) Run(ctx context.Context, agentIDs, smartListIDs []string) (*types.CountsSnapshot, error) {
	snapshot, err := p.counter.ComputeCounts(ctx, agentIDs, smartListIDs)
	if err != nil {
		return nil, err
	}

	dayStart, dayEnd := DayWindow(p.now().In(p.tz))
	if err := p.store.DeleteLogsForDay(dayStart, dayEnd); err != nil {
		return nil, fmt.Errorf("failed to clear day before insert: %w", err)
	}

	saved := 0
	for agentID, listCounts := range snapshot.Counts {
		total := 0
		counts := make(map[string]int, len(listCounts))
		for listID, count := range listCounts {
			counts[listID] = count
			total += count
		}

		entry := types.DailyLogEntry{
			EntryID:         uuid.NewString(),
			Date:            dayStart,
			AgentID:         agentID,
			AgentName:       snapshot.AgentMap[agentID],
			SmartListCounts: counts,
			Total:           total,
		}
		if err := p.store.SaveDailyLog(entry); err != nil {
			// The day is now partial; surface instead of papering over.
			return nil, fmt.Errorf("failed to save daily log for agent %s: %w", agentID, err)
		}
		saved++
	}

	p.logger.Info().
		Time("day", dayStart).
		Int("agents", saved).
		Msg("daily write-cycle completed")
	return snapshot, nil
}

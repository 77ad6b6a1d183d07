package ranking

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/slzapp/slz-dashboard/backend/internal/pipeline"
	"github.com/slzapp/slz-dashboard/backend/internal/storage"
	"github.com/slzapp/slz-dashboard/backend/internal/types"
)

// leaderboardSize caps both the best and worst lists.
const leaderboardSize = 5

// Engine derives best/worst agent leaderboards from the most recent
// day's log entries. Lower total ranks better: a high count means leads
// sitting unworked in smart lists.
type Engine struct {
	store  storage.Store
	logger zerolog.Logger
}

// New creates a ranking engine reading from the given store.
func New(store storage.Store, logger zerolog.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: logger.With().Str("component", "ranking").Logger(),
	}
}

// ComputeRankings builds the leaderboards for the latest logged day.
// An empty store yields empty leaderboards, not an error.
func (e *Engine) ComputeRankings() (*types.Rankings, error) {
	logs, err := e.store.ListDailyLogs()
	if err != nil {
		return nil, err
	}

	rankings := &types.Rankings{
		BestAgents:  []types.RankedAgent{},
		WorstAgents: []types.RankedAgent{},
	}
	if len(logs) == 0 {
		return rankings, nil
	}

	// logs come newest first; every entry in the latest entry's calendar
	// day participates.
	dayStart, dayEnd := pipeline.DayWindow(logs[0].Date)

	// A day should hold one entry per agent, but sum defensively if the
	// same agent appears twice.
	totals := make(map[string]*types.RankedAgent)
	var order []string
	for _, entry := range logs {
		if entry.Date.Before(dayStart) || !entry.Date.Before(dayEnd) {
			continue
		}

		total := 0
		for _, count := range entry.SmartListCounts {
			total += count
		}

		if agent, ok := totals[entry.AgentID]; ok {
			agent.Total += total
			continue
		}
		totals[entry.AgentID] = &types.RankedAgent{
			AgentID:   entry.AgentID,
			AgentName: entry.AgentName,
			Total:     total,
		}
		order = append(order, entry.AgentID)
	}

	ranked := make([]types.RankedAgent, 0, len(order))
	for _, agentID := range order {
		ranked = append(ranked, *totals[agentID])
	}
	// Stable keeps first-seen order on equal totals; there is no
	// secondary sort key.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total < ranked[j].Total
	})

	best := len(ranked)
	if best > leaderboardSize {
		best = leaderboardSize
	}
	rankings.BestAgents = append(rankings.BestAgents, ranked[:best]...)

	worstStart := len(ranked) - leaderboardSize
	if worstStart < 0 {
		worstStart = 0
	}
	for i := len(ranked) - 1; i >= worstStart; i-- {
		rankings.WorstAgents = append(rankings.WorstAgents, ranked[i])
	}

	e.logger.Debug().
		Time("day", dayStart).
		Int("agents", len(ranked)).
		Msg("rankings computed")
	return rankings, nil
}

package counter

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/slzapp/slz-dashboard/backend/internal/fub"
	"github.com/slzapp/slz-dashboard/backend/internal/types"
)

// Directory provides the CRM collections the counter consumes.
type Directory interface {
	FetchAgents(ctx context.Context) ([]types.Agent, error)
	FetchSmartLists(ctx context.Context) ([]types.SmartList, error)
	FetchPeopleInSmartList(ctx context.Context, smartListID string) ([]types.Person, error)
}

// Counter computes the per-agent, per-smart-list tally of assigned people.
type Counter struct {
	dir    Directory
	logger zerolog.Logger
}

// New creates a Counter backed by the given directory.
func New(dir Directory, logger zerolog.Logger) *Counter {
	return &Counter{
		dir:    dir,
		logger: logger.With().Str("component", "counter").Logger(),
	}
}

// ComputeCounts builds the count matrix for the requested agent and
// smart-list ids. The matrix is sparse by request: only requested pairs
// appear, zero-initialized. Smart lists the CRM does not know are
// skipped silently and cost no membership fetch. Duplicate ids in the
// input never double count.
func (c *Counter) ComputeCounts(ctx context.Context, agentIDs, smartListIDs []string) (*types.CountsSnapshot, error) {
	agents, err := c.dir.FetchAgents(ctx)
	if err != nil {
		return nil, err
	}
	smartLists, err := c.dir.FetchSmartLists(ctx)
	if err != nil {
		return nil, err
	}

	agentMap := fub.NameMap(agents)
	smartListMap := fub.SmartListMap(smartLists)

	requestedAgents := dedupe(agentIDs)
	requestedLists := dedupe(smartListIDs)

	counts := make(map[string]map[string]int, len(requestedAgents))
	agentSet := make(map[string]bool, len(requestedAgents))
	for _, agentID := range requestedAgents {
		agentSet[agentID] = true
		row := make(map[string]int, len(requestedLists))
		for _, listID := range requestedLists {
			row[listID] = 0
		}
		counts[agentID] = row
	}

	// Nothing requested on one side means nothing to tally; skip the
	// membership fetches entirely.
	if len(requestedAgents) > 0 {
		for _, listID := range requestedLists {
			if _, known := smartListMap[listID]; !known {
				c.logger.Warn().Str("smart_list_id", listID).Msg("requested smart list not found, skipping")
				continue
			}

			people, err := c.dir.FetchPeopleInSmartList(ctx, listID)
			if err != nil {
				return nil, err
			}

			c.logger.Debug().Str("smart_list_id", listID).Int("people", len(people)).Msg("fetched smart list members")

			for _, person := range people {
				if agentSet[person.AssignedUserID] {
					counts[person.AssignedUserID][listID]++
				}
			}
		}
	}

	return &types.CountsSnapshot{
		Counts:       counts,
		AgentMap:     agentMap,
		SmartListMap: smartListMap,
		Date:         time.Now().Format(time.RFC3339),
	}, nil
}

// dedupe removes duplicate ids while preserving first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

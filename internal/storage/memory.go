package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/slzapp/slz-dashboard/backend/internal/types"
)

// MemoryStore is an in-memory Store used when DynamoDB is disabled
// (DYNAMO_MODE=none) and in tests. Unlike a discard-everything stub it
// honors the full Store contract, so rankings and log queries still
// work against the data the pipeline just wrote.
type MemoryStore struct {
	mu           sync.RWMutex
	entries      []types.DailyLogEntry
	columnOrders map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		columnOrders: make(map[string][]string),
	}
}

func (s *MemoryStore) SaveDailyLog(entry types.DailyLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *MemoryStore) ListDailyLogs() ([]types.DailyLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.DailyLogEntry, len(s.entries))
	copy(out, s.entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *MemoryStore) GetAgentDailyLogs(agentID string) ([]types.DailyLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.DailyLogEntry
	for _, entry := range s.entries {
		if entry.AgentID == agentID {
			out = append(out, entry)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (s *MemoryStore) DeleteLogsForDay(start, end time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	for _, entry := range s.entries {
		if entry.Date.Before(start) || !entry.Date.Before(end) {
			kept = append(kept, entry)
		}
	}
	s.entries = kept
	return nil
}

func (s *MemoryStore) DeleteAllLogs() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}

func (s *MemoryStore) SaveColumnOrder(order types.ColumnOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.columnOrders[order.UserID] = append([]string(nil), order.Order...)
	return nil
}

func (s *MemoryStore) GetColumnOrder(userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.columnOrders[userID]
	if !ok {
		return nil, nil
	}
	return append([]string(nil), order...), nil
}

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/slzapp/slz-dashboard/backend/internal/storage"
	"github.com/slzapp/slz-dashboard/backend/internal/types"
)

// stubCounter returns a fixed matrix per run.
type stubCounter struct {
	runs    int
	matrix  []map[string]map[string]int
	nameMap map[string]string
}

func (s *stubCounter) ComputeCounts(_ context.Context, _, _ []string) (*types.CountsSnapshot, error) {
	counts := s.matrix[s.runs]
	if s.runs < len(s.matrix)-1 {
		s.runs++
	}
	return &types.CountsSnapshot{
		Counts:       counts,
		AgentMap:     s.nameMap,
		SmartListMap: map[string]string{"10": "Hot Leads", "20": "Nurture"},
		Date:         time.Now().Format(time.RFC3339),
	}, nil
}

// failingStore wraps a MemoryStore and fails saves after a threshold.
type failingStore struct {
	*storage.MemoryStore
	failAfter int
	saves     int
}

func (s *failingStore) SaveDailyLog(entry types.DailyLogEntry) error {
	s.saves++
	if s.saves > s.failAfter {
		return errors.New("put item failed")
	}
	return s.MemoryStore.SaveDailyLog(entry)
}

func newTestPipeline(counter CountsComputer, store storage.Store) *Pipeline {
	return New(counter, store, time.UTC, zerolog.New(&bytes.Buffer{}))
}

func TestRunWritesOneEntryPerAgent(t *testing.T) {
	counter := &stubCounter{
		matrix: []map[string]map[string]int{
			{
				"1": {"10": 3, "20": 4},
				"2": {"10": 0, "20": 0},
			},
		},
		nameMap: map[string]string{"1": "Alice", "2": "Bob"},
	}
	store := storage.NewMemoryStore()

	_, err := newTestPipeline(counter, store).Run(context.Background(), []string{"1", "2"}, []string{"10", "20"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logs, _ := store.ListDailyLogs()
	if len(logs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(logs))
	}

	for _, entry := range logs {
		sum := 0
		for _, c := range entry.SmartListCounts {
			sum += c
		}
		if entry.Total != sum {
			t.Errorf("agent %s: total %d does not match counts sum %d", entry.AgentID, entry.Total, sum)
		}
		if entry.AgentName == "" {
			t.Errorf("agent %s: missing denormalized name", entry.AgentID)
		}
		if !entry.Date.Equal(entry.Date.Truncate(24 * time.Hour)) {
			t.Errorf("agent %s: date %v not truncated to midnight", entry.AgentID, entry.Date)
		}
	}
}

func TestRunTotalZeroForEmptyCounts(t *testing.T) {
	counter := &stubCounter{
		matrix:  []map[string]map[string]int{{"1": {}}},
		nameMap: map[string]string{"1": "Alice"},
	}
	store := storage.NewMemoryStore()

	_, err := newTestPipeline(counter, store).Run(context.Background(), []string{"1"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logs, _ := store.ListDailyLogs()
	if len(logs) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(logs))
	}
	if logs[0].Total != 0 {
		t.Errorf("expected total 0 for empty count map, got %d", logs[0].Total)
	}
}

func TestRunTwiceSameDayIsIdempotent(t *testing.T) {
	counter := &stubCounter{
		matrix: []map[string]map[string]int{
			{"1": {"10": 3}},
			{"1": {"10": 7}},
		},
		nameMap: map[string]string{"1": "Alice"},
	}
	store := storage.NewMemoryStore()
	p := newTestPipeline(counter, store)

	if _, err := p.Run(context.Background(), []string{"1"}, []string{"10"}); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if _, err := p.Run(context.Background(), []string{"1"}, []string{"10"}); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	logs, _ := store.ListDailyLogs()
	if len(logs) != 1 {
		t.Fatalf("expected exactly 1 entry after re-run, got %d", len(logs))
	}
	if logs[0].Total != 7 {
		t.Errorf("expected second run's counts to win, got total %d", logs[0].Total)
	}
}

func TestRunKeepsOtherDays(t *testing.T) {
	counter := &stubCounter{
		matrix:  []map[string]map[string]int{{"1": {"10": 2}}},
		nameMap: map[string]string{"1": "Alice"},
	}
	store := storage.NewMemoryStore()

	// Pre-existing entry from yesterday must survive today's cycle.
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	store.SaveDailyLog(types.DailyLogEntry{
		EntryID:         "old",
		AgentID:         "1",
		AgentName:       "Alice",
		Date:            time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 0, 0, 0, 0, time.UTC),
		SmartListCounts: map[string]int{"10": 9},
		Total:           9,
	})

	if _, err := newTestPipeline(counter, store).Run(context.Background(), []string{"1"}, []string{"10"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logs, _ := store.ListDailyLogs()
	if len(logs) != 2 {
		t.Fatalf("expected yesterday's entry to survive, got %d entries", len(logs))
	}
}

func TestRunSurfacesSaveFailure(t *testing.T) {
	counter := &stubCounter{
		matrix: []map[string]map[string]int{
			{"1": {"10": 1}, "2": {"10": 2}, "3": {"10": 3}},
		},
		nameMap: map[string]string{"1": "Alice", "2": "Bob", "3": "Carol"},
	}
	store := &failingStore{MemoryStore: storage.NewMemoryStore(), failAfter: 1}

	_, err := newTestPipeline(counter, store).Run(context.Background(), []string{"1", "2", "3"}, []string{"10"})
	if err == nil {
		t.Fatal("expected save failure to surface")
	}
}

func TestDayWindow(t *testing.T) {
	tz, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load timezone: %v", err)
	}

	at := time.Date(2026, 8, 30, 17, 45, 12, 0, tz)
	start, end := DayWindow(at)

	if start.Hour() != 0 || start.Day() != 30 {
		t.Errorf("unexpected window start %v", start)
	}
	if !end.Equal(start.AddDate(0, 0, 1)) {
		t.Errorf("unexpected window end %v", end)
	}
	if start.Location() != tz {
		t.Errorf("window start lost location: %v", start.Location())
	}
}

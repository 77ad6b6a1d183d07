package storage

import (
	"time"

	"github.com/slzapp/slz-dashboard/backend/internal/types"
)

// Store defines the storage interface for daily log entries and
// per-user column orders.
//
// Daily log uniqueness per (agent, day) is not enforced here: the
// write-cycle workflow deletes the day's entries before inserting fresh
// ones, which is what keeps re-runs idempotent.
type Store interface {
	SaveDailyLog(entry types.DailyLogEntry) error
	ListDailyLogs() ([]types.DailyLogEntry, error)
	GetAgentDailyLogs(agentID string) ([]types.DailyLogEntry, error)
	DeleteLogsForDay(start, end time.Time) error
	DeleteAllLogs() error

	SaveColumnOrder(order types.ColumnOrder) error
	GetColumnOrder(userID string) ([]string, error)
}

package types

import "time"

// Agent is a CRM user to whom people can be assigned. Sourced entirely
// from FollowUpBoss; never mutated locally.
type Agent struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// SmartList is a saved filter in the CRM grouping people by some criterion.
type SmartList struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Person is a CRM contact. Transient: fetched per computation, never
// persisted.
type Person struct {
	ID             string `json:"id"`
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	LeadSource     string `json:"leadSource,omitempty"`
	AssignedUserID string `json:"assignedUserId"`
}

// Appointment is a CRM appointment record, passed through to the UI.
type Appointment struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start,omitempty"`
	End         string `json:"end,omitempty"`
	TypeID      string `json:"typeId,omitempty"`
	OutcomeID   string `json:"outcomeId,omitempty"`
	CreatedBy   string `json:"createdBy,omitempty"`
}

// DailyLogEntry is one persisted snapshot of an agent's smart-list counts
// for a calendar day. Total is always recomputed from SmartListCounts on
// write, never trusted from input.
type DailyLogEntry struct {
	EntryID         string         `json:"entryId" dynamodbav:"EntryID"`
	Date            time.Time      `json:"date" dynamodbav:"Date"`
	AgentID         string         `json:"agentId" dynamodbav:"AgentID"`
	AgentName       string         `json:"agentName" dynamodbav:"AgentName"`
	SmartListCounts map[string]int `json:"smartListCounts" dynamodbav:"SmartListCounts"`
	Total           int            `json:"total" dynamodbav:"Total"`
}

// Selection is the last-saved pair of agent and smart-list identifier
// sets. Singleton per deployment, overwritten wholesale on every save.
type Selection struct {
	AgentIDs     []string `json:"agentIds"`
	SmartListIDs []string `json:"smartListIds"`
}

// ColumnOrder maps a user to their preferred dashboard column ordering.
// Pure presentation state.
type ColumnOrder struct {
	UserID string   `json:"userId" dynamodbav:"UserID"`
	Order  []string `json:"order" dynamodbav:"ColumnOrder"`
}

// CountsSnapshot is the output of one count computation: the per-agent,
// per-smart-list tally plus the name maps needed to render it. Date is
// the moment the snapshot was taken (display only; log dating is the
// caller's concern).
type CountsSnapshot struct {
	Counts       map[string]map[string]int `json:"counts"`
	AgentMap     map[string]string         `json:"agentMap"`
	SmartListMap map[string]string         `json:"smartListMap"`
	Date         string                    `json:"date"`
}

// RankedAgent is one leaderboard row.
type RankedAgent struct {
	AgentID   string `json:"agentId"`
	AgentName string `json:"agentName"`
	Total     int    `json:"total"`
}

// Rankings holds the best/worst agent leaderboards derived from the most
// recent day's log entries. Lower total ranks better: a high count means
// unworked leads sitting in lists.
type Rankings struct {
	BestAgents  []RankedAgent `json:"bestAgents"`
	WorstAgents []RankedAgent `json:"worstAgents"`
}

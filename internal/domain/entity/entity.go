package entity

import "time"

// Event is the canonical calendar event. StartTime and EndTime are always
// stored in UTC; EndTime is zero when the provider sent no end.
type Event struct {
	ID          int64
	Ref         string // 24-hex token embedded in chat messages as [ID:<ref>]
	ProviderID  string
	Title       string
	Description string
	Location    string
	Status      string
	StartTime   time.Time
	EndTime     time.Time
	UpdatedAt   time.Time
	CreatedAt   time.Time
}

// Participant links a user to an event. Unique on (EventID, UserID).
type Participant struct {
	ID       int64
	EventID  int64
	UserID   string
	JoinedAt time.Time
}

// User holds the core-relevant attributes of a clan member. Rows are
// created and refreshed by the login flow; the core only reads them.
type User struct {
	ID         int64
	ChatUserID string
	UserName   string
	Language   string
	Timezone   string
	IsBot      bool
	CreatedAt  time.Time
}

// DispatchRecord is one row of the dispatch ledger
type DispatchRecord struct {
	ID           int64
	Kind         string
	Key          string
	Result       string
	DispatchedAt time.Time
}

// LedgerStat aggregates ledger rows per (kind, result)
type LedgerStat struct {
	Kind   string
	Result string
	Count  int64
}

// LeadWindow describes one reminder offset before event start.
// Width is the slack that tolerates scheduler jitter between ticks.
type LeadWindow struct {
	Tag   string
	Lead  time.Duration
	Width time.Duration
}

// SyncResult is returned by one calendar sync run
type SyncResult struct {
	Upserts             int
	Cancelled           int
	FullResyncPerformed bool
}

// TickStats counts dispatch outcomes of one scheduler run
type TickStats struct {
	Attempted int
	Sent      int
	Blocked   int
	Errors    int
}

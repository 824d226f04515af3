package domain

// Dispatch kinds recorded in the ledger
const (
	KindReminder = "reminder"
	KindDaily    = "daily"
	KindWeekly   = "weekly"
	KindIntro    = "intro"
)

// Dispatch results
const (
	ResultPending = "pending"
	ResultSuccess = "success"
	ResultBlocked = "blocked"
	ResultError   = "error"
)

// Opt-out channels
const (
	ChannelReminders = "reminders"
	ChannelDaily     = "daily"
	ChannelWeekly    = "weekly"
)

// Event statuses mirrored from the calendar provider
const (
	StatusConfirmed = "confirmed"
	StatusTentative = "tentative"
	StatusCancelled = "cancelled"
)

// Channels is the set of opt-out channels accepted by the control surface
var Channels = map[string]bool{
	ChannelReminders: true,
	ChannelDaily:     true,
	ChannelWeekly:    true,
}

// DefaultSignupEmoji is the reaction name that signs a user up for an event
const DefaultSignupEmoji = "fire"

// DefaultLanguage is used when a user has no stored language preference
const DefaultLanguage = "en"

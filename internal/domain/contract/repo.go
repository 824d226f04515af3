package contract

import (
	"context"
	"time"

	"github.com/furclan/eventbot/internal/domain/entity"
)

// DataManager aggregates all repository interfaces
type DataManager interface {
	WithTransaction(ctx context.Context, fn func(dm DataManager) error) error
	Event() EventRepo
	Participant() ParticipantRepo
	User() UserRepo
	Ledger() LedgerRepo
	OptOut() OptOutRepo
	SyncState() SyncStateRepo
}

// EventRepo defines the contract for the canonical event store.
// The sync engine is the only writer; schedulers read.
type EventRepo interface {
	Upsert(event *entity.Event) error
	GetByProviderID(providerID string) (*entity.Event, error)
	GetByRef(ref string) (*entity.Event, error)
	FindInRange(startUTC, endUTC time.Time, excludeCancelled bool) ([]*entity.Event, error)
	MarkCancelled(providerID string) error
}

// ParticipantRepo defines the contract for event sign-ups
type ParticipantRepo interface {
	Upsert(eventID int64, userID string, joinedAt time.Time) error
	ListByEvent(eventID int64) ([]*entity.Participant, error)
}

// UserRepo defines the contract for user reads and login refresh
type UserRepo interface {
	Upsert(user *entity.User) error
	GetByChatID(chatUserID string) (*entity.User, error)
	ListMembers() ([]*entity.User, error)
}

// LedgerRepo is the dispatch ledger. Claim inserts a pending record and
// reports whether this call won the (kind, key) slot.
type LedgerRepo interface {
	Claim(kind, key string) (bool, error)
	Finish(kind, key, result string) error
	Revert(kind, key string) error
	Get(kind, key string) (*entity.DispatchRecord, error)
	Stats() ([]*entity.LedgerStat, error)
}

// OptOutRepo holds per-user, per-channel suppression flags
type OptOutRepo interface {
	Set(userID, channel string) error
	Clear(userID, channel string) error
	IsOptedOut(userID, channel string) (bool, error)
}

// SyncStateRepo stores the singleton calendar sync token
type SyncStateRepo interface {
	GetToken() (string, error)
	SetToken(token string) error
	ClearToken() error
}

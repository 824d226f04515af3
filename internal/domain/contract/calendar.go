package contract

import (
	"context"
	"errors"
)

// ErrSyncTokenExpired signals that the provider rejected the stored sync
// token. The sync engine discards the token and performs a full resync.
var ErrSyncTokenExpired = errors.New("calendar sync token expired")

// ChangeItem is one event change returned by the provider. Start and End
// carry the provider's raw value (RFC3339 or date-only); parsing is the
// sync engine's job so parse failures can be skipped, not fatal.
type ChangeItem struct {
	ProviderID  string
	Title       string
	Description string
	Location    string
	Status      string
	Start       string
	End         string
	Updated     string
	Deleted     bool
}

// ChangeRequest selects one page of changes. Exactly one of SyncToken or
// the TimeMin/TimeMax window is set; PageToken continues a listing.
type ChangeRequest struct {
	SyncToken string
	PageToken string
	TimeMin   string
	TimeMax   string
}

// ChangePage is one page of provider changes. NextSyncToken is only set on
// the terminal page.
type ChangePage struct {
	Items         []ChangeItem
	NextPageToken string
	NextSyncToken string
}

// CalendarProvider is the opaque calendar API surface the sync engine
// depends on
type CalendarProvider interface {
	Changes(ctx context.Context, req ChangeRequest) (*ChangePage, error)
}

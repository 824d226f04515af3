package contract

import (
	"context"
	"errors"
)

// ErrBlocked marks a permanent transport failure (user blocks DMs, account
// gone). Dispatchers finish the ledger record as blocked and never retry.
// Any other transport error is treated as transient.
var ErrBlocked = errors.New("recipient cannot receive direct messages")

// Member is one guild member as seen by the chat transport
type Member struct {
	ChatUserID string
	UserName   string
	IsBot      bool
}

// ChatTransport is the dispatch sink and the minimal chat surface the core
// needs. Implemented by the Slack client wrapper; mocked in tests.
type ChatTransport interface {
	// SendDM delivers a direct message. A nil return means delivered;
	// ErrBlocked means permanently undeliverable.
	SendDM(ctx context.Context, chatUserID, text string) error

	// ListMembers enumerates guild members, bots included
	ListMembers(ctx context.Context) ([]Member, error)

	// FetchMessage returns the text of a single channel message
	FetchMessage(ctx context.Context, channelID, messageID string) (string, error)
}

package transport

import (
	"context"
	"fmt"

	"github.com/furclan/eventbot/internal/domain/contract"
	"github.com/slack-go/slack"
)

// permanentSendErrors are Slack API errors that mean the recipient will
// never receive a DM; dispatchers mark these blocked and stop retrying.
var permanentSendErrors = map[string]bool{
	"cannot_dm_bot":    true,
	"user_not_found":   true,
	"user_disabled":    true,
	"account_inactive": true,
	"access_denied":    true,
	"user_not_visible": true,
}

// SlackTransport implements contract.ChatTransport with the Slack Web API
type SlackTransport struct {
	client *slack.Client
}

func New(client *slack.Client) *SlackTransport {
	return &SlackTransport{client: client}
}

// SendDM opens (or reuses) the IM conversation with the user and posts the
// message. Permanent delivery failures are returned as contract.ErrBlocked;
// everything else (rate limits, 5xx, timeouts) is transient.
func (t *SlackTransport) SendDM(ctx context.Context, chatUserID, text string) error {
	channel, _, _, err := t.client.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: []string{chatUserID},
	})
	if err != nil {
		return t.classify(err)
	}

	_, _, err = t.client.PostMessageContext(ctx, channel.ID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionAsUser(false),
	)
	if err != nil {
		return t.classify(err)
	}

	return nil
}

func (t *SlackTransport) classify(err error) error {
	if permanentSendErrors[err.Error()] {
		return fmt.Errorf("%w: %s", contract.ErrBlocked, err.Error())
	}
	return err
}

// ListMembers enumerates workspace users. Deleted accounts are dropped;
// bot flags are passed through for the schedulers to filter.
func (t *SlackTransport) ListMembers(ctx context.Context) ([]contract.Member, error) {
	users, err := t.client.GetUsersContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspace members: %w", err)
	}

	var members []contract.Member
	for _, u := range users {
		if u.Deleted {
			continue
		}
		members = append(members, contract.Member{
			ChatUserID: u.ID,
			UserName:   u.Name,
			IsBot:      u.IsBot || u.ID == "USLACKBOT",
		})
	}

	return members, nil
}

// FetchMessage returns the text of the message identified by its channel
// and timestamp
func (t *SlackTransport) FetchMessage(ctx context.Context, channelID, messageID string) (string, error) {
	resp, err := t.client.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Latest:    messageID,
		Inclusive: true,
		Limit:     1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch message: %w", err)
	}
	if len(resp.Messages) == 0 {
		return "", fmt.Errorf("message %s not found in channel %s", messageID, channelID)
	}

	return resp.Messages[0].Text, nil
}

package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/furclan/eventbot/internal/domain/service"
	"github.com/slack-go/slack"
)

type SlackHandler struct {
	services      *service.Services
	signingSecret string
}

func New(services *service.Services, signingSecret string) *SlackHandler {
	return &SlackHandler{
		services:      services,
		signingSecret: signingSecret,
	}
}

func (h *SlackHandler) HandleSlashCommand(w http.ResponseWriter, r *http.Request) {
	body, ok := h.verifiedBody(w, r)
	if !ok {
		return
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	// Parse command
	s, err := slack.SlashCommandParse(r)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	response := h.handleCommand(&s, r)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// verifiedBody reads the request body and checks the Slack signature
func (h *SlackHandler) verifiedBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return nil, false
	}

	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return nil, false
	}

	if _, err := verifier.Write(body); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return nil, false
	}

	if err := verifier.Ensure(); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return nil, false
	}

	return body, true
}

func (h *SlackHandler) handleCommand(slashCmd *slack.SlashCommand, r *http.Request) *slack.Msg {
	fields := strings.Fields(slashCmd.Text)
	subcommand := "help"
	if len(fields) > 0 {
		subcommand = strings.ToLower(fields[0])
	}

	ctx := r.Context()

	switch subcommand {
	case "sync":
		result, err := h.services.Control.ForceSync(ctx)
		if err != nil {
			return h.createErrorResponse(fmt.Sprintf("Sync failed: %v", err))
		}
		return &slack.Msg{
			ResponseType: slack.ResponseTypeEphemeral,
			Text: fmt.Sprintf("Sync done: %d upserts, %d cancelled, full resync: %v",
				result.Upserts, result.Cancelled, result.FullResyncPerformed),
		}

	case "remind":
		stats, err := h.services.Control.ForceReminders(ctx)
		if err != nil {
			return h.createErrorResponse(fmt.Sprintf("Reminder run failed: %v", err))
		}
		return h.statsResponse("Reminder run", stats.Attempted, stats.Sent, stats.Blocked, stats.Errors)

	case "daily":
		stats, err := h.services.Control.ForceDaily(ctx)
		if err != nil {
			return h.createErrorResponse(fmt.Sprintf("Daily run failed: %v", err))
		}
		return h.statsResponse("Daily overview", stats.Attempted, stats.Sent, stats.Blocked, stats.Errors)

	case "weekly":
		stats, err := h.services.Control.ForceWeekly(ctx)
		if err != nil {
			return h.createErrorResponse(fmt.Sprintf("Weekly run failed: %v", err))
		}
		return h.statsResponse("Weekly newsletter", stats.Attempted, stats.Sent, stats.Blocked, stats.Errors)

	case "stats":
		return h.handleStats()

	case "optout":
		if len(fields) < 2 {
			return h.createErrorResponse("Usage: /events optout <reminders|daily|weekly>")
		}
		if err := h.services.Control.OptOut(slashCmd.UserID, strings.ToLower(fields[1])); err != nil {
			return h.createErrorResponse(err.Error())
		}
		return &slack.Msg{
			ResponseType: slack.ResponseTypeEphemeral,
			Text:         fmt.Sprintf("🚫 You will no longer receive %s messages.", fields[1]),
		}

	case "optin":
		if len(fields) < 2 {
			return h.createErrorResponse("Usage: /events optin <reminders|daily|weekly>")
		}
		if err := h.services.Control.OptIn(slashCmd.UserID, strings.ToLower(fields[1])); err != nil {
			return h.createErrorResponse(err.Error())
		}
		return &slack.Msg{
			ResponseType: slack.ResponseTypeEphemeral,
			Text:         fmt.Sprintf("✅ You will receive %s messages again.", fields[1]),
		}

	default:
		return h.handleHelp()
	}
}

func (h *SlackHandler) handleStats() *slack.Msg {
	stats, err := h.services.Control.LedgerStats()
	if err != nil {
		return h.createErrorResponse(fmt.Sprintf("Failed to read ledger: %v", err))
	}

	var b strings.Builder
	b.WriteString("*Dispatch ledger*\n")
	if len(stats) == 0 {
		b.WriteString("No dispatches recorded yet.")
	}
	for _, stat := range stats {
		fmt.Fprintf(&b, "• %s / %s: %d\n", stat.Kind, stat.Result, stat.Count)
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         b.String(),
	}
}

func (h *SlackHandler) handleHelp() *slack.Msg {
	help := `*Event bot commands:*
• ` + "`/events sync`" + ` - Pull calendar changes now
• ` + "`/events remind`" + ` - Run the reminder tick now
• ` + "`/events daily`" + ` - Send the daily overview now
• ` + "`/events weekly`" + ` - Send the weekly newsletter now
• ` + "`/events stats`" + ` - Show dispatch ledger counters
• ` + "`/events optout <reminders|daily|weekly>`" + ` - Stop a message type
• ` + "`/events optin <reminders|daily|weekly>`" + ` - Resume a message type`

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         help,
	}
}

func (h *SlackHandler) statsResponse(label string, attempted, sent, blocked, errors int) *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("%s: %d attempted, %d ✅ / %d 🚫 / %d ❌", label, attempted, sent, blocked, errors),
	}
}

func (h *SlackHandler) createErrorResponse(message string) *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         "❌ " + message,
	}
}

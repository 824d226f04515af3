package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/slack-go/slack/slackevents"
)

// HandleEvents receives the Slack Events API callback. The only event the
// core subscribes to is reaction_added, which feeds the event sign-up.
func (h *SlackHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	body, ok := h.verifiedBody(w, r)
	if !ok {
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(challenge.Challenge))

	case slackevents.CallbackEvent:
		if reaction, ok := event.InnerEvent.Data.(*slackevents.ReactionAddedEvent); ok {
			err := h.services.Signup.HandleReaction(
				r.Context(),
				reaction.Item.Channel,
				reaction.Item.Timestamp,
				reaction.User,
				reaction.Reaction,
			)
			if err != nil {
				log.Printf("Reaction signup failed: %v", err)
			}
		}
		w.WriteHeader(http.StatusOK)

	default:
		w.WriteHeader(http.StatusOK)
	}
}

package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/furclan/eventbot/internal/clock"
	"github.com/furclan/eventbot/internal/domain/contract"
)

// eventRefRegex matches the event token embedded in announcement messages
var eventRefRegex = regexp.MustCompile(`\[ID:([a-fA-F0-9]{24})\]`)

type signupService struct {
	dm    contract.DataManager
	chat  contract.ChatTransport
	clk   clock.Clock
	emoji string
}

func newSignup(dm contract.DataManager, chat contract.ChatTransport, clk clock.Clock, emoji string) *signupService {
	return &signupService{
		dm:    dm,
		chat:  chat,
		clk:   clk,
		emoji: emoji,
	}
}

// HandleReaction signs the reacting user up for the event referenced in
// the message. Only the configured emoji counts; unknown refs are ignored.
// The participant upsert is idempotent, so re-emitting the same reaction
// yields one row.
func (s *signupService) HandleReaction(ctx context.Context, channelID, messageID, userID, emoji string) error {
	if emoji != s.emoji {
		return nil
	}

	text, err := s.chat.FetchMessage(ctx, channelID, messageID)
	if err != nil {
		return fmt.Errorf("failed to fetch reacted message: %w", err)
	}

	match := eventRefRegex.FindStringSubmatch(text)
	if match == nil {
		return nil
	}

	event, err := s.dm.Event().GetByRef(strings.ToLower(match[1]))
	if err != nil {
		return err
	}
	if event == nil {
		log.Printf("Reaction signup for unknown event ref %s ignored", match[1])
		return nil
	}

	if err := s.dm.Participant().Upsert(event.ID, userID, s.clk.Now()); err != nil {
		return err
	}

	log.Printf("User %s joined event %d via reaction", userID, event.ID)
	return nil
}

package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/furclan/eventbot/internal/clock"
	"github.com/furclan/eventbot/internal/config"
	"github.com/furclan/eventbot/internal/domain"
	"github.com/furclan/eventbot/internal/domain/contract"
	"github.com/furclan/eventbot/internal/domain/entity"
)

type reminderService struct {
	dm          contract.DataManager
	chat        contract.ChatTransport
	clk         clock.Clock
	locks       *recipientLocks
	leadWindows []entity.LeadWindow
	tick        time.Duration
	delay       time.Duration
	timeout     time.Duration
	roleMention string
	defaultLang string
	stopChan    chan struct{}
}

func newReminder(dm contract.DataManager, chat contract.ChatTransport, clk clock.Clock, cfg *config.Config, locks *recipientLocks) *reminderService {
	return &reminderService{
		dm:          dm,
		chat:        chat,
		clk:         clk,
		locks:       locks,
		leadWindows: cfg.LeadWindows,
		tick:        time.Duration(cfg.TickSeconds) * time.Second,
		delay:       cfg.InterMessageDelay,
		timeout:     cfg.DispatchTimeout,
		roleMention: cfg.RoleMentionID,
		defaultLang: cfg.DefaultLanguage,
		stopChan:    make(chan struct{}),
	}
}

func (s *reminderService) Start(ctx context.Context) {
	log.Println("Reminder scheduler starting...")
	go s.loop(ctx)
}

func (s *reminderService) Stop() {
	log.Println("Reminder scheduler stopping...")
	close(s.stopChan)
}

func (s *reminderService) loop(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		stats, err := s.RunTick(ctx, s.clk.Now())
		if err != nil {
			log.Printf("Reminder tick failed: %v", err)
		} else if stats.Attempted > 0 {
			log.Printf("Reminder tick: %d attempted, %d sent, %d blocked, %d errors",
				stats.Attempted, stats.Sent, stats.Blocked, stats.Errors)
		}

		select {
		case <-ticker.C:
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// reminderKey is the ledger key for one (event, user, lead) dispatch
func reminderKey(eventID int64, userID, leadTag string) string {
	return fmt.Sprintf("%d:%s:%s", eventID, userID, leadTag)
}

// RunTick scans every lead window once. For each upcoming event and
// participant it claims the ledger slot, renders the localized message and
// dispatches it. Duplicate protection lives entirely in the ledger: a tick
// re-run for the same instant dispatches nothing new.
func (s *reminderService) RunTick(ctx context.Context, now time.Time) (entity.TickStats, error) {
	stats := entity.TickStats{}

	for _, window := range s.leadWindows {
		windowStart := now.Add(window.Lead)
		windowEnd := windowStart.Add(window.Width)

		events, err := s.dm.Event().FindInRange(windowStart, windowEnd, true)
		if err != nil {
			return stats, fmt.Errorf("failed to query reminder window %s: %w", window.Tag, err)
		}

		for _, event := range events {
			participants, err := s.dm.Participant().ListByEvent(event.ID)
			if err != nil {
				return stats, fmt.Errorf("failed to list participants of event %d: %w", event.ID, err)
			}

			for _, participant := range participants {
				if err := ctx.Err(); err != nil {
					return stats, err
				}

				optedOut, err := s.dm.OptOut().IsOptedOut(participant.UserID, domain.ChannelReminders)
				if err != nil {
					return stats, err
				}
				if optedOut {
					continue
				}

				key := reminderKey(event.ID, participant.UserID, window.Tag)
				claimed, err := s.dm.Ledger().Claim(domain.KindReminder, key)
				if err != nil {
					return stats, err
				}
				if !claimed {
					continue
				}

				text := s.renderFor(participant.UserID, event, window.Lead)
				deliver(ctx, s.dm.Ledger(), s.chat, s.locks, domain.KindReminder, key, participant.UserID, text, s.timeout, &stats)

				if err := pause(ctx, s.delay); err != nil {
					return stats, err
				}
			}
		}
	}

	return stats, nil
}

// renderFor localizes the reminder for a participant. Users without a
// stored profile fall back to the configured default language and UTC.
func (s *reminderService) renderFor(userID string, event *entity.Event, lead time.Duration) string {
	lang := s.defaultLang
	loc := time.UTC

	user, err := s.dm.User().GetByChatID(userID)
	if err != nil {
		log.Printf("Failed to load user %s, using defaults: %v", userID, err)
	} else if user != nil {
		if user.Language != "" {
			lang = user.Language
		}
		loc = clock.UserLocation(user.Timezone)
	}

	return renderReminder(lang, loc, event, lead, s.roleMention)
}

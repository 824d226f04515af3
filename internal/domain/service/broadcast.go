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

type broadcastService struct {
	dm            contract.DataManager
	chat          contract.ChatTransport
	clk           clock.Clock
	locks         *recipientLocks
	dailyHour     int
	weeklyWeekday time.Weekday
	weeklyHour    int
	delay         time.Duration
	timeout       time.Duration
	defaultLang   string
	stopChan      chan struct{}
}

func newBroadcast(dm contract.DataManager, chat contract.ChatTransport, clk clock.Clock, cfg *config.Config, locks *recipientLocks) *broadcastService {
	return &broadcastService{
		dm:            dm,
		chat:          chat,
		clk:           clk,
		locks:         locks,
		dailyHour:     cfg.DailyHourLocal,
		weeklyWeekday: cfg.WeeklyWeekdayLocal,
		weeklyHour:    cfg.WeeklyHourLocal,
		delay:         cfg.InterMessageDelay,
		timeout:       cfg.DispatchTimeout,
		defaultLang:   cfg.DefaultLanguage,
		stopChan:      make(chan struct{}),
	}
}

func (s *broadcastService) Start(ctx context.Context) {
	log.Println("Broadcast scheduler starting...")
	go s.loop(ctx)
}

func (s *broadcastService) Stop() {
	log.Println("Broadcast scheduler stopping...")
	close(s.stopChan)
}

// loop wakes aligned to each wall-clock minute so the hour/minute gates in
// RunDaily and RunWeekly fire exactly once, without drift
func (s *broadcastService) loop(ctx context.Context) {
	for {
		now := s.clk.Now()
		next := now.Truncate(time.Minute).Add(time.Minute)

		select {
		case <-time.After(next.Sub(now)):
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}

		tickAt := s.clk.Now()
		if _, err := s.RunDaily(ctx, tickAt, false); err != nil {
			log.Printf("Daily overview run failed: %v", err)
		}
		if _, err := s.RunWeekly(ctx, tickAt, false); err != nil {
			log.Printf("Weekly newsletter run failed: %v", err)
		}

		// once an hour is enough for the one-time intro DMs
		if tickAt.Minute() == 0 {
			if _, err := s.RunIntro(ctx); err != nil {
				log.Printf("Intro run failed: %v", err)
			}
		}
	}
}

// RunDaily dispatches the daily overview to every eligible member whose
// local clock is inside the first tick of the configured hour. The ledger
// key (user, local date) makes the overview once-per-local-day.
func (s *broadcastService) RunDaily(ctx context.Context, now time.Time, force bool) (entity.TickStats, error) {
	stats := entity.TickStats{}

	members, err := s.eligibleMembers(ctx)
	if err != nil {
		return stats, err
	}
	profiles, err := s.loadProfiles()
	if err != nil {
		return stats, err
	}

	for _, member := range members {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		lang, loc := s.profileFor(profiles, member.ChatUserID)
		local := now.In(loc)
		if !force && !(local.Hour() == s.dailyHour && local.Minute() == 0) {
			continue
		}

		optedOut, err := s.dm.OptOut().IsOptedOut(member.ChatUserID, domain.ChannelDaily)
		if err != nil {
			return stats, err
		}
		if optedOut {
			continue
		}

		key := fmt.Sprintf("%s:%s", member.ChatUserID, clock.LocalDate(now, loc))
		claimed, err := s.dm.Ledger().Claim(domain.KindDaily, key)
		if err != nil {
			return stats, err
		}
		if !claimed {
			continue
		}

		events, err := s.dm.Event().FindInRange(now, now.Add(24*time.Hour), true)
		if err != nil {
			s.revertOnError(domain.KindDaily, key)
			return stats, err
		}

		text := renderOverview(lang, loc, events, "daily_header", "no_events_24h")
		deliver(ctx, s.dm.Ledger(), s.chat, s.locks, domain.KindDaily, key, member.ChatUserID, text, s.timeout, &stats)

		if err := pause(ctx, s.delay); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

// RunWeekly dispatches the weekly newsletter at the configured local
// weekday and hour. The ledger key uses the date of that weekday in the
// member's current week, so force-runs later in the week cannot duplicate.
func (s *broadcastService) RunWeekly(ctx context.Context, now time.Time, force bool) (entity.TickStats, error) {
	stats := entity.TickStats{}

	members, err := s.eligibleMembers(ctx)
	if err != nil {
		return stats, err
	}
	profiles, err := s.loadProfiles()
	if err != nil {
		return stats, err
	}

	for _, member := range members {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		lang, loc := s.profileFor(profiles, member.ChatUserID)
		local := now.In(loc)
		gate := local.Weekday() == s.weeklyWeekday && local.Hour() == s.weeklyHour && local.Minute() == 0
		if !force && !gate {
			continue
		}

		optedOut, err := s.dm.OptOut().IsOptedOut(member.ChatUserID, domain.ChannelWeekly)
		if err != nil {
			return stats, err
		}
		if optedOut {
			continue
		}

		periodStart := clock.WeekStart(now, loc, s.weeklyWeekday)
		key := fmt.Sprintf("%s:%s", member.ChatUserID, periodStart.Format("2006-01-02"))
		claimed, err := s.dm.Ledger().Claim(domain.KindWeekly, key)
		if err != nil {
			return stats, err
		}
		if !claimed {
			continue
		}

		events, err := s.dm.Event().FindInRange(now, now.AddDate(0, 0, 7), true)
		if err != nil {
			s.revertOnError(domain.KindWeekly, key)
			return stats, err
		}

		text := renderOverview(lang, loc, events, "weekly_header", "no_events_7d")
		deliver(ctx, s.dm.Ledger(), s.chat, s.locks, domain.KindWeekly, key, member.ChatUserID, text, s.timeout, &stats)

		if err := pause(ctx, s.delay); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

// RunIntro sends the one-time welcome DM to members that never got one.
// Kind=intro with key=user makes it once per user, ever.
func (s *broadcastService) RunIntro(ctx context.Context) (entity.TickStats, error) {
	stats := entity.TickStats{}

	members, err := s.eligibleMembers(ctx)
	if err != nil {
		return stats, err
	}
	profiles, err := s.loadProfiles()
	if err != nil {
		return stats, err
	}

	for _, member := range members {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		claimed, err := s.dm.Ledger().Claim(domain.KindIntro, member.ChatUserID)
		if err != nil {
			return stats, err
		}
		if !claimed {
			continue
		}

		lang, _ := s.profileFor(profiles, member.ChatUserID)
		deliver(ctx, s.dm.Ledger(), s.chat, s.locks, domain.KindIntro, member.ChatUserID, member.ChatUserID, renderIntro(lang), s.timeout, &stats)

		if err := pause(ctx, s.delay); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

// eligibleMembers returns guild members that are not bot accounts
func (s *broadcastService) eligibleMembers(ctx context.Context) ([]contract.Member, error) {
	members, err := s.chat.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate guild members: %w", err)
	}

	var eligible []contract.Member
	for _, m := range members {
		if m.IsBot {
			continue
		}
		eligible = append(eligible, m)
	}
	return eligible, nil
}

// loadProfiles reads all stored user rows once per run, keyed by chat id,
// so per-member lookups do not hit the database member by member
func (s *broadcastService) loadProfiles() (map[string]*entity.User, error) {
	users, err := s.dm.User().ListMembers()
	if err != nil {
		return nil, fmt.Errorf("failed to load user profiles: %w", err)
	}

	profiles := make(map[string]*entity.User, len(users))
	for _, user := range users {
		profiles[user.ChatUserID] = user
	}
	return profiles, nil
}

// profileFor resolves language and timezone, defaulting when the member
// has no user row
func (s *broadcastService) profileFor(profiles map[string]*entity.User, chatUserID string) (string, *time.Location) {
	lang := s.defaultLang
	loc := time.UTC

	if user, ok := profiles[chatUserID]; ok {
		if user.Language != "" {
			lang = user.Language
		}
		loc = clock.UserLocation(user.Timezone)
	}

	return lang, loc
}

func (s *broadcastService) revertOnError(kind, key string) {
	if err := s.dm.Ledger().Revert(kind, key); err != nil {
		log.Printf("Failed to revert dispatch %s/%s: %v", kind, key, err)
	}
}

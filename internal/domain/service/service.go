package service

import (
	"github.com/furclan/eventbot/internal/clock"
	"github.com/furclan/eventbot/internal/config"
	"github.com/furclan/eventbot/internal/domain/contract"
)

type Services struct {
	CalendarSync *calendarSyncService
	Reminder     *reminderService
	Broadcast    *broadcastService
	Signup       *signupService
	Control      *controlService
}

func New(dm contract.DataManager, chat contract.ChatTransport, provider contract.CalendarProvider, clk clock.Clock, cfg *config.Config) *Services {
	// one serializer shared by every scheduler that DMs users
	locks := newRecipientLocks()

	calendarSync := newCalendarSync(dm, provider, clk, cfg)
	reminder := newReminder(dm, chat, clk, cfg, locks)
	broadcast := newBroadcast(dm, chat, clk, cfg, locks)
	signup := newSignup(dm, chat, clk, cfg.SignupEmoji)

	return &Services{
		CalendarSync: calendarSync,
		Reminder:     reminder,
		Broadcast:    broadcast,
		Signup:       signup,
		Control:      newControl(dm, calendarSync, reminder, broadcast, clk),
	}
}

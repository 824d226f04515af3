package service

import (
	"context"
	"fmt"

	"github.com/furclan/eventbot/internal/clock"
	"github.com/furclan/eventbot/internal/domain"
	"github.com/furclan/eventbot/internal/domain/contract"
	"github.com/furclan/eventbot/internal/domain/entity"
)

// controlService is the command surface behind the slash commands.
// Force-operations bypass the timing gates but still honor the ledger, so
// they can never cause duplicates.
type controlService struct {
	dm        contract.DataManager
	sync      *calendarSyncService
	reminder  *reminderService
	broadcast *broadcastService
	clk       clock.Clock
}

func newControl(dm contract.DataManager, sync *calendarSyncService, reminder *reminderService, broadcast *broadcastService, clk clock.Clock) *controlService {
	return &controlService{
		dm:        dm,
		sync:      sync,
		reminder:  reminder,
		broadcast: broadcast,
		clk:       clk,
	}
}

func (s *controlService) ForceSync(ctx context.Context) (entity.SyncResult, error) {
	return s.sync.Sync(ctx)
}

func (s *controlService) ForceReminders(ctx context.Context) (entity.TickStats, error) {
	return s.reminder.RunTick(ctx, s.clk.Now())
}

func (s *controlService) ForceDaily(ctx context.Context) (entity.TickStats, error) {
	return s.broadcast.RunDaily(ctx, s.clk.Now(), true)
}

func (s *controlService) ForceWeekly(ctx context.Context) (entity.TickStats, error) {
	return s.broadcast.RunWeekly(ctx, s.clk.Now(), true)
}

func (s *controlService) LedgerStats() ([]*entity.LedgerStat, error) {
	return s.dm.Ledger().Stats()
}

func (s *controlService) OptOut(userID, channel string) error {
	if !domain.Channels[channel] {
		return fmt.Errorf("unknown channel %q", channel)
	}
	return s.dm.OptOut().Set(userID, channel)
}

func (s *controlService) OptIn(userID, channel string) error {
	if !domain.Channels[channel] {
		return fmt.Errorf("unknown channel %q", channel)
	}
	return s.dm.OptOut().Clear(userID, channel)
}

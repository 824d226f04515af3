package service

import (
	"context"
	"testing"
	"time"

	"github.com/furclan/eventbot/internal/clock"
	"github.com/furclan/eventbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func Test_controlService_OptOutOptIn(t *testing.T) {
	_, dm, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	s := &controlService{dm: dm}

	require.Error(t, s.OptOut("U1", "newsletter"), "Unknown channels are rejected")
	require.Error(t, s.OptIn("U1", ""))

	require.NoError(t, s.OptOut("U1", domain.ChannelWeekly))

	optedOut, err := dm.OptOut().IsOptedOut("U1", domain.ChannelWeekly)
	require.NoError(t, err)
	assert.True(t, optedOut)

	require.NoError(t, s.OptIn("U1", domain.ChannelWeekly))

	optedOut, err = dm.OptOut().IsOptedOut("U1", domain.ChannelWeekly)
	require.NoError(t, err)
	assert.False(t, optedOut)
}

func Test_controlService_ForceWeeklyBypassesGate(t *testing.T) {
	m, dm, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	// Wednesday afternoon, far from the Sunday noon gate
	now := time.Date(2025, 8, 20, 15, 30, 0, 0, time.UTC)
	clk := clock.NewFixed(now)
	broadcast := newBroadcast(dm, m.mockChat, clk, testConfig(), newRecipientLocks())
	s := newControl(dm, nil, nil, broadcast, clk)

	m.mockChat.EXPECT().ListMembers(gomock.Any()).Return(singleMember("U1"), nil).Times(1)
	m.mockChat.EXPECT().SendDM(gomock.Any(), "U1", gomock.Any()).Return(nil).Times(1)

	stats, err := s.ForceWeekly(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Sent)

	// still keyed to the week's Sunday
	record, err := dm.Ledger().Get(domain.KindWeekly, "U1:2025-08-17")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, domain.ResultSuccess, record.Result)
}

func Test_controlService_LedgerStats(t *testing.T) {
	_, dm, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	s := &controlService{dm: dm}

	claimed, err := dm.Ledger().Claim(domain.KindReminder, "1:U1:15m")
	require.NoError(t, err)
	require.True(t, claimed)
	require.NoError(t, dm.Ledger().Finish(domain.KindReminder, "1:U1:15m", domain.ResultSuccess))

	stats, err := s.LedgerStats()
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, domain.KindReminder, stats[0].Kind)
	assert.Equal(t, domain.ResultSuccess, stats[0].Result)
	assert.Equal(t, int64(1), stats[0].Count)
}

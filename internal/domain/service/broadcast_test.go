package service

import (
	"context"
	"testing"
	"time"

	"github.com/furclan/eventbot/internal/clock"
	"github.com/furclan/eventbot/internal/domain"
	"github.com/furclan/eventbot/internal/domain/contract"
	"github.com/furclan/eventbot/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func singleMember(userID string) []contract.Member {
	return []contract.Member{{ChatUserID: userID, UserName: "somebody"}}
}

func Test_broadcastService_RunWeekly_sundayGate(t *testing.T) {
	m, dm, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	// 10:00:30 UTC on Sunday 2025-08-17 is 12:00:30 in Berlin (CEST)
	tickAt := time.Date(2025, 8, 17, 10, 0, 30, 0, time.UTC)

	require.NoError(t, dm.User().Upsert(&entity.User{
		ChatUserID: "U1",
		UserName:   "somebody",
		Timezone:   "Europe/Berlin",
	}))

	s := newBroadcast(dm, m.mockChat, clock.NewFixed(tickAt), testConfig(), newRecipientLocks())

	m.mockChat.EXPECT().ListMembers(gomock.Any()).Return(singleMember("U1"), nil).AnyTimes()
	m.mockChat.EXPECT().
		SendDM(gomock.Any(), "U1", gomock.Any()).
		Return(nil).
		Times(1)

	stats, err := s.RunWeekly(context.Background(), tickAt, false)
	require.NoError(t, err)
	assert.Equal(t, entity.TickStats{Attempted: 1, Sent: 1}, stats)

	record, err := dm.Ledger().Get(domain.KindWeekly, "U1:2025-08-17")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, domain.ResultSuccess, record.Result)

	// a repeated tick inside the same minute sends nothing
	stats, err = s.RunWeekly(context.Background(), tickAt, false)
	require.NoError(t, err)
	assert.Equal(t, entity.TickStats{}, stats)

	// Monday fails the weekday gate entirely
	stats, err = s.RunWeekly(context.Background(), tickAt.AddDate(0, 0, 1), false)
	require.NoError(t, err)
	assert.Equal(t, entity.TickStats{}, stats)
}

func Test_broadcastService_RunWeekly_forceCannotDuplicate(t *testing.T) {
	m, dm, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	sunday := time.Date(2025, 8, 17, 12, 0, 0, 0, time.UTC)
	s := newBroadcast(dm, m.mockChat, clock.NewFixed(sunday), testConfig(), newRecipientLocks())

	m.mockChat.EXPECT().ListMembers(gomock.Any()).Return(singleMember("U1"), nil).AnyTimes()
	m.mockChat.EXPECT().SendDM(gomock.Any(), "U1", gomock.Any()).Return(nil).Times(1)

	stats, err := s.RunWeekly(context.Background(), sunday, false)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Sent)

	// a forced run on Wednesday maps onto the same (user, week) key
	wednesday := time.Date(2025, 8, 20, 15, 30, 0, 0, time.UTC)
	stats, err = s.RunWeekly(context.Background(), wednesday, true)
	require.NoError(t, err)
	assert.Equal(t, entity.TickStats{}, stats)
}

func Test_broadcastService_RunDaily(t *testing.T) {
	m, dm, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	tickAt := time.Date(2025, 8, 20, 8, 0, 0, 0, time.UTC)
	s := newBroadcast(dm, m.mockChat, clock.NewFixed(tickAt), testConfig(), newRecipientLocks())

	m.mockChat.EXPECT().ListMembers(gomock.Any()).Return(singleMember("U1"), nil).AnyTimes()
	m.mockChat.EXPECT().
		SendDM(gomock.Any(), "U1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, text string) error {
			assert.Contains(t, text, "24")
			return nil
		}).
		Times(1)

	// 07:59 local misses the gate
	stats, err := s.RunDaily(context.Background(), tickAt.Add(-time.Minute), false)
	require.NoError(t, err)
	assert.Equal(t, entity.TickStats{}, stats)

	stats, err = s.RunDaily(context.Background(), tickAt, false)
	require.NoError(t, err)
	assert.Equal(t, entity.TickStats{Attempted: 1, Sent: 1}, stats)

	record, err := dm.Ledger().Get(domain.KindDaily, "U1:2025-08-20")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, domain.ResultSuccess, record.Result)
}

func Test_broadcastService_RunDaily_localizedProfile(t *testing.T) {
	m, dm, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	// 06:00 UTC is 08:00 in Berlin; the stored profile drives both the
	// gate timezone and the message language
	tickAt := time.Date(2025, 8, 20, 6, 0, 0, 0, time.UTC)
	s := newBroadcast(dm, m.mockChat, clock.NewFixed(tickAt), testConfig(), newRecipientLocks())

	require.NoError(t, dm.User().Upsert(&entity.User{
		ChatUserID: "U1",
		UserName:   "somebody",
		Language:   "de",
		Timezone:   "Europe/Berlin",
	}))

	m.mockChat.EXPECT().ListMembers(gomock.Any()).Return(singleMember("U1"), nil).Times(1)
	m.mockChat.EXPECT().
		SendDM(gomock.Any(), "U1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, text string) error {
			assert.Contains(t, text, "Keine Events")
			return nil
		}).
		Times(1)

	stats, err := s.RunDaily(context.Background(), tickAt, false)
	require.NoError(t, err)
	assert.Equal(t, entity.TickStats{Attempted: 1, Sent: 1}, stats)
}

func Test_broadcastService_RunDaily_optOut(t *testing.T) {
	m, dm, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	tickAt := time.Date(2025, 8, 20, 8, 0, 0, 0, time.UTC)
	s := newBroadcast(dm, m.mockChat, clock.NewFixed(tickAt), testConfig(), newRecipientLocks())

	require.NoError(t, dm.OptOut().Set("U1", domain.ChannelDaily))

	m.mockChat.EXPECT().ListMembers(gomock.Any()).Return(singleMember("U1"), nil).Times(1)

	stats, err := s.RunDaily(context.Background(), tickAt, false)
	require.NoError(t, err)
	assert.Equal(t, entity.TickStats{}, stats)

	record, err := dm.Ledger().Get(domain.KindDaily, "U1:2025-08-20")
	require.NoError(t, err)
	assert.Nil(t, record, "Opted-out members must not even claim a ledger slot")
}

func Test_broadcastService_RunDaily_blockedUser(t *testing.T) {
	m, dm, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	tickAt := time.Date(2025, 8, 20, 8, 0, 0, 0, time.UTC)
	s := newBroadcast(dm, m.mockChat, clock.NewFixed(tickAt), testConfig(), newRecipientLocks())

	m.mockChat.EXPECT().ListMembers(gomock.Any()).Return(singleMember("U1"), nil).Times(1)
	m.mockChat.EXPECT().
		SendDM(gomock.Any(), "U1", gomock.Any()).
		Return(contract.ErrBlocked).
		Times(1)

	stats, err := s.RunDaily(context.Background(), tickAt, false)
	require.NoError(t, err)
	assert.Equal(t, entity.TickStats{Attempted: 1, Blocked: 1}, stats)

	record, err := dm.Ledger().Get(domain.KindDaily, "U1:2025-08-20")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, domain.ResultBlocked, record.Result)
}

func Test_broadcastService_RunIntro(t *testing.T) {
	m, dm, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	tickAt := time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC)
	s := newBroadcast(dm, m.mockChat, clock.NewFixed(tickAt), testConfig(), newRecipientLocks())

	members := []contract.Member{
		{ChatUserID: "U1", UserName: "somebody"},
		{ChatUserID: "B1", UserName: "the-bot", IsBot: true},
	}

	m.mockChat.EXPECT().ListMembers(gomock.Any()).Return(members, nil).AnyTimes()
	m.mockChat.EXPECT().
		SendDM(gomock.Any(), "U1", gomock.Any()).
		Return(nil).
		Times(1)

	stats, err := s.RunIntro(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.TickStats{Attempted: 1, Sent: 1}, stats)

	// intro is once per user, ever
	stats, err = s.RunIntro(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.TickStats{}, stats)

	record, err := dm.Ledger().Get(domain.KindIntro, "B1")
	require.NoError(t, err)
	assert.Nil(t, record, "Bot accounts are never dispatched to")
}

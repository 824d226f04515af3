package service

import (
	"testing"
	"time"

	"github.com/furclan/eventbot/internal/config"
	"github.com/furclan/eventbot/internal/database"
	"github.com/furclan/eventbot/internal/domain/contract"
	"github.com/furclan/eventbot/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type allMocks struct {
	mockChat     *mocks.MockChatTransport
	mockProvider *mocks.MockCalendarProvider
}

// newServiceTestMock wires gomock transports around a real in-memory
// database, so ledger and store semantics are exercised for real
func newServiceTestMock(t *testing.T) (m allMocks, dm contract.DataManager, ctrl *gomock.Controller) {
	t.Helper()

	ctrl = gomock.NewController(t)

	db := database.SetupTestDB(t)
	t.Cleanup(func() {
		database.CleanupTestDB(t, db)
	})

	dm = database.NewInstance(db)
	require.NotNil(t, dm)

	m = allMocks{
		mockChat:     mocks.NewMockChatTransport(ctrl),
		mockProvider: mocks.NewMockCalendarProvider(ctrl),
	}

	return
}

// testConfig returns the default configuration with no inter-message delay
func testConfig() *config.Config {
	return &config.Config{
		TickSeconds:         60,
		SyncIntervalSeconds: 300,
		LeadWindows:         config.DefaultLeadWindows(),
		HorizonDays:         30,
		DailyHourLocal:      8,
		WeeklyWeekdayLocal:  time.Sunday,
		WeeklyHourLocal:     12,
		InterMessageDelay:   0,
		DispatchTimeout:     time.Second,
		DefaultLanguage:     "en",
		SignupEmoji:         "fire",
	}
}

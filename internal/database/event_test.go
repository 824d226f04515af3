package database

import (
	"testing"
	"time"

	"github.com/furclan/eventbot/internal/domain"
	"github.com/furclan/eventbot/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRepository_Upsert(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newEventRepo(db.conn)

	event := &entity.Event{
		ProviderID: "google-evt-1",
		Title:      "Clan meetup",
		Location:   "Berlin",
		StartTime:  time.Date(2025, 8, 20, 18, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2025, 8, 20, 20, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
	}

	err := repo.Upsert(event)
	require.NoError(t, err, "Failed to upsert event")
	assert.NotZero(t, event.ID, "Expected event ID to be set")
	assert.Len(t, event.Ref, 24, "Expected a 24-hex ref")
	assert.Equal(t, domain.StatusConfirmed, event.Status)

	firstID := event.ID
	firstRef := event.Ref

	// upserting the same provider id updates in place and keeps id and ref
	event.Title = "Clan meetup (moved)"
	event.StartTime = time.Date(2025, 8, 21, 18, 0, 0, 0, time.UTC)
	err = repo.Upsert(event)
	require.NoError(t, err)
	assert.Equal(t, firstID, event.ID)
	assert.Equal(t, firstRef, event.Ref)

	stored, err := repo.GetByProviderID("google-evt-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Clan meetup (moved)", stored.Title)
	assert.Equal(t, time.Date(2025, 8, 21, 18, 0, 0, 0, time.UTC), stored.StartTime)
}

func TestEventRepository_GetByRef(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newEventRepo(db.conn)

	event := &entity.Event{
		ProviderID: "google-evt-1",
		Title:      "Game night",
		StartTime:  time.Date(2025, 8, 20, 18, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Upsert(event))

	found, err := repo.GetByRef(event.Ref)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, event.ID, found.ID)

	missing, err := repo.GetByRef("000000000000000000000000")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEventRepository_FindInRange(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newEventRepo(db.conn)

	base := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	for _, e := range []*entity.Event{
		{ProviderID: "e1", Title: "inside", StartTime: base},
		{ProviderID: "e2", Title: "later inside", StartTime: base.Add(30 * time.Minute)},
		{ProviderID: "e3", Title: "outside", StartTime: base.Add(2 * time.Hour)},
		{ProviderID: "e4", Title: "cancelled", StartTime: base.Add(10 * time.Minute), Status: domain.StatusCancelled},
	} {
		require.NoError(t, repo.Upsert(e))
	}

	events, err := repo.FindInRange(base, base.Add(time.Hour), true)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// sorted by start ascending
	assert.Equal(t, "inside", events[0].Title)
	assert.Equal(t, "later inside", events[1].Title)

	// the range is half-open: an event exactly at the end is excluded
	events, err = repo.FindInRange(base, base.Add(30*time.Minute), true)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "inside", events[0].Title)

	// cancelled events come back when not excluded
	events, err = repo.FindInRange(base, base.Add(time.Hour), false)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestEventRepository_MarkCancelled(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newEventRepo(db.conn)

	event := &entity.Event{
		ProviderID: "google-evt-1",
		Title:      "To be cancelled",
		StartTime:  time.Date(2025, 8, 20, 18, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Upsert(event))

	require.NoError(t, repo.MarkCancelled("google-evt-1"))

	stored, err := repo.GetByProviderID("google-evt-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
}

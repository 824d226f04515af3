package database

import (
	"testing"

	"github.com/furclan/eventbot/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Upsert(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newUserRepo(db.conn)

	user := &entity.User{
		ChatUserID: "U123",
		UserName:   "foxtail",
		Language:   "de",
		Timezone:   "Europe/Berlin",
	}
	require.NoError(t, repo.Upsert(user))
	assert.NotZero(t, user.ID)

	firstID := user.ID

	// refreshing the same chat id updates in place
	user.UserName = "foxtail2"
	user.Timezone = "Europe/Vienna"
	require.NoError(t, repo.Upsert(user))
	assert.Equal(t, firstID, user.ID)

	stored, err := repo.GetByChatID("U123")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "foxtail2", stored.UserName)
	assert.Equal(t, "Europe/Vienna", stored.Timezone)
	assert.Equal(t, "de", stored.Language)
}

func TestUserRepository_ListMembers(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newUserRepo(db.conn)

	require.NoError(t, repo.Upsert(&entity.User{ChatUserID: "U1", UserName: "alpha"}))
	require.NoError(t, repo.Upsert(&entity.User{ChatUserID: "U2", UserName: "beta"}))
	require.NoError(t, repo.Upsert(&entity.User{ChatUserID: "B1", UserName: "botling", IsBot: true}))

	users, err := repo.ListMembers()
	require.NoError(t, err)
	require.Len(t, users, 2, "Bot accounts should be excluded")

	ids := []string{users[0].ChatUserID, users[1].ChatUserID}
	assert.Contains(t, ids, "U1")
	assert.Contains(t, ids, "U2")
}

func TestUserRepository_GetByChatID_NotFound(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newUserRepo(db.conn)

	user, err := repo.GetByChatID("UNKNOWN")
	require.NoError(t, err)
	assert.Nil(t, user)
}

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/furclan/eventbot/internal/domain/contract"
)

type syncStateRepo struct {
	db dbConn
}

func newSyncStateRepo(db dbConn) contract.SyncStateRepo {
	return &syncStateRepo{db: db}
}

// GetToken returns the stored sync token, or "" when none is stored
func (r *syncStateRepo) GetToken() (string, error) {
	var token string
	query := `SELECT sync_token FROM sync_state WHERE id = 1`

	err := r.db.QueryRow(query).Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get sync token: %w", err)
	}

	return token, nil
}

// SetToken atomically replaces the singleton token row
func (r *syncStateRepo) SetToken(token string) error {
	query := `
		INSERT INTO sync_state (id, sync_token, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			sync_token = excluded.sync_token,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query, token, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set sync token: %w", err)
	}
	return nil
}

func (r *syncStateRepo) ClearToken() error {
	return r.SetToken("")
}

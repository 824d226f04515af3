package database

import (
	"fmt"

	"github.com/furclan/eventbot/internal/domain/contract"
)

type optOutRepo struct {
	db dbConn
}

func newOptOutRepo(db dbConn) contract.OptOutRepo {
	return &optOutRepo{db: db}
}

func (r *optOutRepo) Set(userID, channel string) error {
	query := `
		INSERT INTO opt_outs (user_id, channel)
		VALUES (?, ?)
		ON CONFLICT(user_id, channel) DO NOTHING
	`

	_, err := r.db.Exec(query, userID, channel)
	if err != nil {
		return fmt.Errorf("failed to set opt-out: %w", err)
	}
	return nil
}

func (r *optOutRepo) Clear(userID, channel string) error {
	query := `DELETE FROM opt_outs WHERE user_id = ? AND channel = ?`

	_, err := r.db.Exec(query, userID, channel)
	if err != nil {
		return fmt.Errorf("failed to clear opt-out: %w", err)
	}
	return nil
}

func (r *optOutRepo) IsOptedOut(userID, channel string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM opt_outs WHERE user_id = ? AND channel = ?`

	err := r.db.QueryRow(query, userID, channel).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check opt-out: %w", err)
	}

	return count > 0, nil
}

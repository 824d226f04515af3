package database

import (
	"fmt"
	"time"

	"github.com/furclan/eventbot/internal/domain/contract"
	"github.com/furclan/eventbot/internal/domain/entity"
)

type participantRepo struct {
	db dbConn
}

func newParticipantRepo(db dbConn) contract.ParticipantRepo {
	return &participantRepo{db: db}
}

// Upsert is idempotent: re-inserting the same (event, user) pair keeps the
// original joined_at.
func (r *participantRepo) Upsert(eventID int64, userID string, joinedAt time.Time) error {
	query := `
		INSERT INTO participants (event_id, user_id, joined_at)
		VALUES (?, ?, ?)
		ON CONFLICT(event_id, user_id) DO NOTHING
	`

	_, err := r.db.Exec(query, eventID, userID, joinedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert participant: %w", err)
	}
	return nil
}

func (r *participantRepo) ListByEvent(eventID int64) ([]*entity.Participant, error) {
	query := `
		SELECT id, event_id, user_id, joined_at
		FROM participants
		WHERE event_id = ?
		ORDER BY joined_at ASC
	`

	rows, err := r.db.Query(query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*entity.Participant
	for rows.Next() {
		p := &entity.Participant{}
		err := rows.Scan(&p.ID, &p.EventID, &p.UserID, &p.JoinedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}

	return participants, nil
}

package database

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/furclan/eventbot/internal/domain"
	"github.com/furclan/eventbot/internal/domain/contract"
	"github.com/furclan/eventbot/internal/domain/entity"
)

type eventRepo struct {
	db dbConn
}

func newEventRepo(db dbConn) contract.EventRepo {
	return &eventRepo{db: db}
}

// newEventRef returns a 24-hex token used in chat messages as [ID:<ref>]
func newEventRef() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate event ref: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (r *eventRepo) Upsert(event *entity.Event) error {
	if event.Ref == "" {
		ref, err := newEventRef()
		if err != nil {
			return err
		}
		event.Ref = ref
	}
	if event.Status == "" {
		event.Status = domain.StatusConfirmed
	}

	var endTime interface{}
	if !event.EndTime.IsZero() {
		endTime = event.EndTime.UTC()
	}

	query := `
		INSERT INTO events (ref, provider_id, title, description, location, status, start_time, end_time, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(provider_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			location = excluded.location,
			status = excluded.status,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query,
		event.Ref,
		event.ProviderID,
		event.Title,
		event.Description,
		event.Location,
		event.Status,
		event.StartTime.UTC(),
		endTime,
		event.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert event: %w", err)
	}

	stored, err := r.GetByProviderID(event.ProviderID)
	if err != nil {
		return err
	}
	if stored != nil {
		event.ID = stored.ID
		event.Ref = stored.Ref
	}
	return nil
}

const eventColumns = `id, ref, provider_id, title, description, location, status, start_time, end_time, updated_at, created_at`

func (r *eventRepo) scanEvent(row *sql.Row) (*entity.Event, error) {
	event := &entity.Event{}
	var endTime sql.NullTime

	err := row.Scan(
		&event.ID,
		&event.Ref,
		&event.ProviderID,
		&event.Title,
		&event.Description,
		&event.Location,
		&event.Status,
		&event.StartTime,
		&endTime,
		&event.UpdatedAt,
		&event.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if endTime.Valid {
		event.EndTime = endTime.Time.UTC()
	}
	event.StartTime = event.StartTime.UTC()
	return event, nil
}

func (r *eventRepo) GetByProviderID(providerID string) (*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE provider_id = ?`
	return r.scanEvent(r.db.QueryRow(query, providerID))
}

func (r *eventRepo) GetByRef(ref string) (*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE ref = ?`
	return r.scanEvent(r.db.QueryRow(query, ref))
}

func (r *eventRepo) FindInRange(startUTC, endUTC time.Time, excludeCancelled bool) ([]*entity.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE start_time >= ? AND start_time < ?
	`
	args := []interface{}{startUTC.UTC(), endUTC.UTC()}

	if excludeCancelled {
		query += ` AND status != ?`
		args = append(args, domain.StatusCancelled)
	}
	query += ` ORDER BY start_time ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find events: %w", err)
	}
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		event := &entity.Event{}
		var endTime sql.NullTime
		err := rows.Scan(
			&event.ID,
			&event.Ref,
			&event.ProviderID,
			&event.Title,
			&event.Description,
			&event.Location,
			&event.Status,
			&event.StartTime,
			&endTime,
			&event.UpdatedAt,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if endTime.Valid {
			event.EndTime = endTime.Time.UTC()
		}
		event.StartTime = event.StartTime.UTC()
		events = append(events, event)
	}

	return events, nil
}

func (r *eventRepo) MarkCancelled(providerID string) error {
	query := `UPDATE events SET status = ?, updated_at = ? WHERE provider_id = ?`

	_, err := r.db.Exec(query, domain.StatusCancelled, time.Now().UTC(), providerID)
	if err != nil {
		return fmt.Errorf("failed to mark event cancelled: %w", err)
	}
	return nil
}

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/furclan/eventbot/internal/domain"
	"github.com/furclan/eventbot/internal/domain/contract"
	"github.com/furclan/eventbot/internal/domain/entity"
)

type ledgerRepo struct {
	db dbConn
}

func newLedgerRepo(db dbConn) contract.LedgerRepo {
	return &ledgerRepo{db: db}
}

// Claim inserts a pending record for (kind, key) and reports whether this
// call won the slot. The unique index is the critical section: a second
// claim for the same key returns false, across processes and restarts.
func (r *ledgerRepo) Claim(kind, key string) (bool, error) {
	query := `
		INSERT OR IGNORE INTO dispatch_ledger (kind, dispatch_key, result, dispatched_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.Exec(query, kind, key, domain.ResultPending, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to claim dispatch: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read claim result: %w", err)
	}

	return affected > 0, nil
}

func (r *ledgerRepo) Finish(kind, key, result string) error {
	query := `
		UPDATE dispatch_ledger
		SET result = ?, dispatched_at = ?
		WHERE kind = ? AND dispatch_key = ?
	`

	_, err := r.db.Exec(query, result, time.Now().UTC(), kind, key)
	if err != nil {
		return fmt.Errorf("failed to finish dispatch: %w", err)
	}
	return nil
}

// Revert deletes a claimed record so a future tick may retry the dispatch
func (r *ledgerRepo) Revert(kind, key string) error {
	query := `DELETE FROM dispatch_ledger WHERE kind = ? AND dispatch_key = ?`

	_, err := r.db.Exec(query, kind, key)
	if err != nil {
		return fmt.Errorf("failed to revert dispatch: %w", err)
	}
	return nil
}

func (r *ledgerRepo) Get(kind, key string) (*entity.DispatchRecord, error) {
	record := &entity.DispatchRecord{}
	query := `
		SELECT id, kind, dispatch_key, result, dispatched_at
		FROM dispatch_ledger
		WHERE kind = ? AND dispatch_key = ?
	`

	err := r.db.QueryRow(query, kind, key).Scan(
		&record.ID,
		&record.Kind,
		&record.Key,
		&record.Result,
		&record.DispatchedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dispatch record: %w", err)
	}

	return record, nil
}

func (r *ledgerRepo) Stats() ([]*entity.LedgerStat, error) {
	query := `
		SELECT kind, result, COUNT(*)
		FROM dispatch_ledger
		GROUP BY kind, result
		ORDER BY kind, result
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger stats: %w", err)
	}
	defer rows.Close()

	var stats []*entity.LedgerStat
	for rows.Next() {
		stat := &entity.LedgerStat{}
		err := rows.Scan(&stat.Kind, &stat.Result, &stat.Count)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger stat: %w", err)
		}
		stats = append(stats, stat)
	}

	return stats, nil
}

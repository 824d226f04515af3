package database

import (
	"context"
	"fmt"

	"github.com/furclan/eventbot/internal/domain/contract"
)

// instance implements DataManager interface
type instance struct {
	db              *DB
	eventRepo       contract.EventRepo
	participantRepo contract.ParticipantRepo
	userRepo        contract.UserRepo
	ledgerRepo      contract.LedgerRepo
	optOutRepo      contract.OptOutRepo
	syncStateRepo   contract.SyncStateRepo
}

// NewInstance creates a new database instance with all repositories
func NewInstance(db *DB) contract.DataManager {
	i := &instance{db: db}
	repos := repoInstancesWithConn(db.conn)
	i.eventRepo = repos.eventRepo
	i.participantRepo = repos.participantRepo
	i.userRepo = repos.userRepo
	i.ledgerRepo = repos.ledgerRepo
	i.optOutRepo = repos.optOutRepo
	i.syncStateRepo = repos.syncStateRepo
	return i
}

// repoInstancesWithConn creates repository instances with custom dbConn
func repoInstancesWithConn(db dbConn) *instance {
	return &instance{
		eventRepo:       newEventRepo(db),
		participantRepo: newParticipantRepo(db),
		userRepo:        newUserRepo(db),
		ledgerRepo:      newLedgerRepo(db),
		optOutRepo:      newOptOutRepo(db),
		syncStateRepo:   newSyncStateRepo(db),
	}
}

func (i *instance) Event() contract.EventRepo {
	return i.eventRepo
}

func (i *instance) Participant() contract.ParticipantRepo {
	return i.participantRepo
}

func (i *instance) User() contract.UserRepo {
	return i.userRepo
}

func (i *instance) Ledger() contract.LedgerRepo {
	return i.ledgerRepo
}

func (i *instance) OptOut() contract.OptOutRepo {
	return i.optOutRepo
}

func (i *instance) SyncState() contract.SyncStateRepo {
	return i.syncStateRepo
}

// WithTransaction executes a function within a database transaction
func (i *instance) WithTransaction(ctx context.Context, fn func(dm contract.DataManager) error) error {
	if i.db == nil {
		return fmt.Errorf("nested transactions are not supported")
	}

	tx, err := i.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txInstance := repoInstancesWithConn(tx)
	err = fn(txInstance)
	if err != nil {
		rbErr := tx.Rollback()
		if rbErr != nil {
			return fmt.Errorf("error rolling back transaction: %v, original error: %w", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}

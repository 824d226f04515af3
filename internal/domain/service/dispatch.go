package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/furclan/eventbot/internal/domain"
	"github.com/furclan/eventbot/internal/domain/contract"
	"github.com/furclan/eventbot/internal/domain/entity"
)

// recipientLocks serializes outbound DMs per recipient. The reminder and
// broadcast schedulers share one instance, so a user whose reminder window
// coincides with a daily or weekly gate still receives one message at a time.
type recipientLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newRecipientLocks() *recipientLocks {
	return &recipientLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *recipientLocks) forUser(userID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	return m
}

// deliver sends one claimed DM and settles its ledger record. A permanent
// transport failure finishes the record as blocked so the key is never
// retried; anything else reverts the claim for the next tick.
func deliver(ctx context.Context, ledger contract.LedgerRepo, chat contract.ChatTransport, locks *recipientLocks, kind, key, userID, text string, timeout time.Duration, stats *entity.TickStats) {
	stats.Attempted++

	outbound := locks.forUser(userID)
	outbound.Lock()
	defer outbound.Unlock()

	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := chat.SendDM(sendCtx, userID, text)
	switch {
	case err == nil:
		if err := ledger.Finish(kind, key, domain.ResultSuccess); err != nil {
			log.Printf("Failed to finish dispatch %s/%s: %v", kind, key, err)
			stats.Errors++
			return
		}
		stats.Sent++

	case errors.Is(err, contract.ErrBlocked):
		log.Printf("DM blocked for %s (%s/%s)", userID, kind, key)
		if err := ledger.Finish(kind, key, domain.ResultBlocked); err != nil {
			log.Printf("Failed to finish dispatch %s/%s: %v", kind, key, err)
		}
		stats.Blocked++

	default:
		log.Printf("DM to %s failed (%s/%s), will retry: %v", userID, kind, key, err)
		if err := ledger.Revert(kind, key); err != nil {
			log.Printf("Failed to revert dispatch %s/%s: %v", kind, key, err)
		}
		stats.Errors++
	}
}

// pause sleeps the inter-message delay, honoring cancellation
func pause(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

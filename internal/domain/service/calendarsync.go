package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/furclan/eventbot/internal/clock"
	"github.com/furclan/eventbot/internal/config"
	"github.com/furclan/eventbot/internal/domain"
	"github.com/furclan/eventbot/internal/domain/contract"
	"github.com/furclan/eventbot/internal/domain/entity"
)

// ErrSyncRunning is returned when a sync run overlaps a running one
var ErrSyncRunning = errors.New("calendar sync already running")

const maxPageAttempts = 3

type calendarSyncService struct {
	dm       contract.DataManager
	provider contract.CalendarProvider
	clk      clock.Clock
	horizon  time.Duration
	interval time.Duration
	running  atomic.Bool
	stopChan chan struct{}
}

func newCalendarSync(dm contract.DataManager, provider contract.CalendarProvider, clk clock.Clock, cfg *config.Config) *calendarSyncService {
	return &calendarSyncService{
		dm:       dm,
		provider: provider,
		clk:      clk,
		horizon:  time.Duration(cfg.HorizonDays) * 24 * time.Hour,
		interval: time.Duration(cfg.SyncIntervalSeconds) * time.Second,
		stopChan: make(chan struct{}),
	}
}

func (s *calendarSyncService) Start(ctx context.Context) {
	log.Println("Calendar sync starting...")
	go s.loop(ctx)
}

func (s *calendarSyncService) Stop() {
	log.Println("Calendar sync stopping...")
	close(s.stopChan)
}

func (s *calendarSyncService) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		result, err := s.Sync(ctx)
		if err != nil && !errors.Is(err, ErrSyncRunning) {
			log.Printf("Calendar sync failed: %v", err)
		} else if err == nil {
			log.Printf("Calendar sync done: %d upserts, %d cancelled, full resync=%v",
				result.Upserts, result.Cancelled, result.FullResyncPerformed)
		}

		select {
		case <-ticker.C:
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Sync pulls all pending changes from the calendar provider and upserts
// them into the event store. With a stored sync token the pull is
// incremental; a token-expired response discards the token and restarts
// with a full time-window query, once per call. Only the terminal page's
// sync token is persisted.
func (s *calendarSyncService) Sync(ctx context.Context) (entity.SyncResult, error) {
	result := entity.SyncResult{}

	// advisory flag: a sync run is never concurrent with itself
	if !s.running.CompareAndSwap(false, true) {
		return result, ErrSyncRunning
	}
	defer s.running.Store(false)

	token, err := s.dm.SyncState().GetToken()
	if err != nil {
		return result, err
	}

	// tracks the freshest updated-at seen per provider id within this run
	seen := make(map[string]time.Time)

	// the full-query window is fixed once per paged query: continuation
	// pages must repeat the exact same parameters
	var timeMin, timeMax string
	if token == "" {
		now := s.clk.Now()
		timeMin = clock.FormatProviderTime(now)
		timeMax = clock.FormatProviderTime(now.Add(s.horizon))
	}

	pageToken := ""
	for {
		req := contract.ChangeRequest{PageToken: pageToken}
		if token != "" {
			req.SyncToken = token
		} else {
			req.TimeMin = timeMin
			req.TimeMax = timeMax
		}

		page, err := s.listWithRetry(ctx, req)
		if errors.Is(err, contract.ErrSyncTokenExpired) {
			if token == "" {
				// expired during a full query is a provider bug; fail the run
				return result, err
			}
			log.Println("Sync token expired, performing full resync")
			if err := s.dm.SyncState().ClearToken(); err != nil {
				return result, err
			}
			token = ""
			pageToken = ""
			now := s.clk.Now()
			timeMin = clock.FormatProviderTime(now)
			timeMax = clock.FormatProviderTime(now.Add(s.horizon))
			result.FullResyncPerformed = true
			continue
		}
		if err != nil {
			return result, err
		}

		for _, item := range page.Items {
			if err := s.applyChange(item, seen, &result); err != nil {
				return result, err
			}
		}

		if page.NextPageToken != "" {
			pageToken = page.NextPageToken
			continue
		}

		// terminal page: persist the provider's new sync token atomically.
		// Intermediate tokens are never stored.
		if page.NextSyncToken != "" {
			if err := s.dm.SyncState().SetToken(page.NextSyncToken); err != nil {
				return result, err
			}
		}
		return result, nil
	}
}

// applyChange maps one provider item onto the event store. Malformed items
// are logged and skipped; they never fail the run.
func (s *calendarSyncService) applyChange(item contract.ChangeItem, seen map[string]time.Time, result *entity.SyncResult) error {
	if item.ProviderID == "" {
		return nil
	}

	updatedAt := s.clk.Now()
	if item.Updated != "" {
		if parsed, err := clock.ParseProviderTime(item.Updated); err == nil {
			updatedAt = parsed
		}
	}

	// never downgrade an event already upserted in this run
	if prev, ok := seen[item.ProviderID]; ok && !updatedAt.After(prev) {
		return nil
	}
	seen[item.ProviderID] = updatedAt

	if item.Deleted || item.Status == domain.StatusCancelled {
		existing, err := s.dm.Event().GetByProviderID(item.ProviderID)
		if err != nil {
			return err
		}
		if existing == nil || existing.Status == domain.StatusCancelled {
			return nil
		}
		if err := s.dm.Event().MarkCancelled(item.ProviderID); err != nil {
			return err
		}
		result.Cancelled++
		return nil
	}

	startTime, err := clock.ParseProviderTime(item.Start)
	if err != nil {
		log.Printf("Skipping event %s with unparseable start %q: %v", item.ProviderID, item.Start, err)
		return nil
	}

	var endTime time.Time
	if item.End != "" {
		endTime, err = clock.ParseProviderTime(item.End)
		if err != nil {
			log.Printf("Dropping unparseable end %q of event %s: %v", item.End, item.ProviderID, err)
			endTime = time.Time{}
		} else if endTime.Before(startTime) {
			log.Printf("Dropping end before start on event %s", item.ProviderID)
			endTime = time.Time{}
		}
	}

	status := item.Status
	if status == "" {
		status = domain.StatusConfirmed
	}

	event := &entity.Event{
		ProviderID:  item.ProviderID,
		Title:       item.Title,
		Description: item.Description,
		Location:    item.Location,
		Status:      status,
		StartTime:   startTime,
		EndTime:     endTime,
		UpdatedAt:   updatedAt,
	}
	if err := s.dm.Event().Upsert(event); err != nil {
		return err
	}
	result.Upserts++
	return nil
}

// listWithRetry fetches one page with bounded exponential backoff.
// Token-expired responses are returned immediately; the resync decision
// belongs to the caller.
func (s *calendarSyncService) listWithRetry(ctx context.Context, req contract.ChangeRequest) (*contract.ChangePage, error) {
	backoff := time.Second

	var lastErr error
	for attempt := 1; attempt <= maxPageAttempts; attempt++ {
		page, err := s.provider.Changes(ctx, req)
		if err == nil {
			return page, nil
		}
		if errors.Is(err, contract.ErrSyncTokenExpired) {
			return nil, err
		}

		lastErr = err
		if attempt < maxPageAttempts {
			log.Printf("Calendar page fetch failed (attempt %d/%d): %v", attempt, maxPageAttempts, err)
			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("calendar page fetch failed after %d attempts: %w", maxPageAttempts, lastErr)
}

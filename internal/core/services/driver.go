package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
	"github.com/alghazaly/partsync/internal/core/ports/driving"
	"github.com/alghazaly/partsync/internal/logger"
)

// Ensure SyncDriver implements the interface.
var _ driving.SyncDriver = (*SyncDriver)(nil)

// SyncDriverDeps groups the collaborators of the sync driver.
// History and Notifier are optional.
type SyncDriverDeps struct {
	Queue      driving.QueueService
	Dispatcher *ActionDispatcher
	Fetcher    driven.CollectionFetcher
	Cache      driven.CacheStore
	State      driven.SyncStateStore
	Actors     driven.ActorStore
	History    driven.HistoryStore
	Notifier   driving.NotificationService
}

// SyncDriver periodically refreshes the cached collections and drains the
// offline queue when connectivity returns.
type SyncDriver struct {
	cfg  domain.SyncConfig
	deps SyncDriverDeps
	now  func() time.Time
	log  *logger.Logger

	// Lifecycle.
	mu       sync.Mutex
	running  bool
	loopDone chan struct{}
	cancel   context.CancelFunc
	ticker   *time.Ticker
	interval time.Duration
	wg       sync.WaitGroup
	restored bool

	// syncSlot is a single-slot mailbox: full while a full-sync cycle runs.
	syncSlot chan struct{}

	// wasOffline is set while offline and consumed by whoever drains first.
	wasOffline atomic.Bool

	// User-visible status.
	stateMu    sync.RWMutex
	state      domain.SyncState
	generation uint64
	resetTimer *time.Timer
}

// NewSyncDriver creates a stopped driver.
func NewSyncDriver(cfg domain.SyncConfig, deps SyncDriverDeps) *SyncDriver {
	cfg = cfg.WithDefaults()
	d := &SyncDriver{
		cfg:      cfg,
		deps:     deps,
		now:      time.Now,
		log:      logger.With("driver"),
		interval: cfg.Interval,
		syncSlot: make(chan struct{}, 1),
		state:    domain.SyncState{Status: domain.SyncIdle, Online: true},
	}
	// Anything restored from disk is drained by the first online cycle.
	d.wasOffline.Store(true)
	return d
}

// Start runs one full-sync cycle and arms the periodic ticker.
func (d *SyncDriver) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return nil // Already running
	}

	if !d.restored {
		d.restore(ctx)
		d.restored = true
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	d.running = true
	d.cancel = cancel
	d.loopDone = done
	d.ticker = time.NewTicker(d.interval)
	ticker := d.ticker
	d.wg.Add(1)
	d.mu.Unlock()

	d.log.Info("started, interval %s", d.interval)
	go d.loop(loopCtx, ticker, done)
	return nil
}

// Stop cancels the ticker and waits for in-flight work.
func (d *SyncDriver) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = false
	d.cancel()
	d.ticker.Stop()
	d.mu.Unlock()

	d.wg.Wait()

	d.stateMu.Lock()
	if d.resetTimer != nil {
		d.resetTimer.Stop()
	}
	d.stateMu.Unlock()

	d.log.Info("stopped")
	return nil
}

// loop runs the first cycle immediately, then one per tick.
func (d *SyncDriver) loop(ctx context.Context, ticker *time.Ticker, done chan struct{}) {
	defer d.wg.Done()
	defer func() {
		d.mu.Lock()
		if d.loopDone == done && d.running {
			d.running = false
			d.ticker.Stop()
		}
		d.mu.Unlock()
	}()

	d.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

func (d *SyncDriver) tick(ctx context.Context) {
	err := d.runCycle(ctx)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrOffline):
		d.log.Debug("cycle skipped: offline")
	case errors.Is(err, domain.ErrSyncInProgress):
		d.log.Debug("cycle skipped: another cycle in flight")
	default:
		d.log.Warn("cycle failed: %v", err)
	}
}

// SyncNow runs a full-sync cycle outside the ticker.
func (d *SyncDriver) SyncNow(ctx context.Context) error {
	d.ensureRestored(ctx)
	return d.runCycle(ctx)
}

// SetInterval changes the ticker interval.
func (d *SyncDriver) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if interval == d.interval {
		return
	}
	d.interval = interval
	if d.running {
		d.ticker.Reset(interval)
	}
	d.log.Info("interval changed to %s", interval)
}

// State returns the driver lifecycle state.
func (d *SyncDriver) State() domain.DriverState {
	if d.deps.Queue != nil && d.deps.Queue.IsProcessing() {
		return domain.DriverDraining
	}
	if len(d.syncSlot) == 1 {
		return domain.DriverSyncing
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return domain.DriverRunning
	}
	return domain.DriverStopped
}

// SyncState returns a snapshot of the sync status.
func (d *SyncDriver) SyncState() domain.SyncState {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()
	return d.state
}

// ensureRestored loads the persisted state once.
func (d *SyncDriver) ensureRestored(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.restored {
		d.restore(ctx)
		d.restored = true
	}
}

// restore loads the persisted state (caller must hold mu).
func (d *SyncDriver) restore(ctx context.Context) {
	if d.deps.State == nil {
		return
	}
	saved, err := d.deps.State.Get(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			d.log.Warn("restoring sync state: %v", err)
		}
		return
	}

	d.stateMu.Lock()
	d.state.LastSyncAt = saved.LastSyncAt
	d.state.Online = saved.Online
	d.stateMu.Unlock()
}

// runCycle is one full-sync cycle.
func (d *SyncDriver) runCycle(ctx context.Context) error {
	started := d.now()

	if !d.isOnline() {
		d.wasOffline.Store(true)
		d.record(ctx, domain.RunFullSync, started, domain.RunSkipped, domain.ErrOffline.Error(), 0)
		return domain.ErrOffline
	}

	// Local writes go out before fresh reads come in.
	if d.wasOffline.Swap(false) {
		if _, err := d.DrainQueue(ctx); err != nil {
			d.log.Warn("drain after reconnect: %v", err)
		}
	}

	select {
	case d.syncSlot <- struct{}{}:
	default:
		return domain.ErrSyncInProgress
	}
	defer func() { <-d.syncSlot }()

	d.log.Debug("cycle started")
	d.transition(ctx, domain.SyncSyncing, "")

	fetched, err := d.refresh(ctx)
	if err != nil {
		d.fail(ctx, err)
		d.record(ctx, domain.RunFullSync, started, domain.RunError, err.Error(), fetched)
		return err
	}

	d.succeed(ctx)
	d.record(ctx, domain.RunFullSync, started, domain.RunSuccess, "", fetched)
	d.log.Debug("cycle finished, %d records", fetched)
	return nil
}

// fetchResult is the outcome of one collection fetch.
type fetchResult struct {
	collection domain.Collection
	page       *domain.CollectionPage
	err        error
}

// refresh fetches the reference collections, then the role-gated ones for
// elevated actors, and writes every successful page to the cache.
func (d *SyncDriver) refresh(ctx context.Context) (int, error) {
	if d.deps.Fetcher == nil || d.deps.Cache == nil {
		return 0, fmt.Errorf("refresh: %w", domain.ErrNotConfigured)
	}

	var actor *domain.Actor
	if d.deps.Actors != nil {
		a, err := d.deps.Actors.Get(ctx)
		if err != nil {
			return 0, fmt.Errorf("load actor: %w", err)
		}
		actor = a
	}

	results := d.fetchAll(ctx, domain.ReferenceCollections())
	stored, err := d.apply(ctx, results)
	if err != nil {
		return stored, err
	}
	if allFailed(results) {
		return 0, fmt.Errorf("no collection could be fetched: %w", results[0].err)
	}

	if actor.IsElevated() {
		gated := d.fetchAll(ctx, domain.RoleGatedCollections())
		n, err := d.apply(ctx, gated)
		stored += n
		if err != nil {
			return stored, err
		}
	}

	return stored, nil
}

// fetchAll fetches collections concurrently and waits for all of them.
func (d *SyncDriver) fetchAll(ctx context.Context, collections []domain.Collection) []fetchResult {
	results := make([]fetchResult, len(collections))

	var wg sync.WaitGroup
	for i, c := range collections {
		wg.Add(1)
		go func(i int, c domain.Collection) {
			defer wg.Done()
			results[i] = d.fetchOne(ctx, c)
		}(i, c)
	}
	wg.Wait()

	return results
}

func (d *SyncDriver) fetchOne(ctx context.Context, c domain.Collection) fetchResult {
	var since time.Time
	if d.cfg.Delta && c.SupportsDelta() {
		cursor, err := d.deps.Cache.Cursor(ctx, c)
		if err != nil {
			d.log.Warn("reading %s cursor, fetching in full: %v", c, err)
		} else {
			since = cursor
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, d.cfg.CallTimeout)
	defer cancel()

	page, err := d.deps.Fetcher.FetchCollection(callCtx, c, since)
	if err != nil {
		if c.IsRoleGated() && errors.Is(err, domain.ErrUnauthorized) {
			d.log.Debug("fetch %s: not permitted for this actor", c)
		} else {
			d.log.Warn("fetch %s failed, keeping cached data: %v", c, err)
		}
		return fetchResult{collection: c, err: err}
	}
	return fetchResult{collection: c, page: page}
}

// apply writes fetched pages to the cache. Failed fetches keep their stale data.
func (d *SyncDriver) apply(ctx context.Context, results []fetchResult) (int, error) {
	var errs []error
	stored := 0
	for _, r := range results {
		if r.err != nil || r.page == nil {
			continue
		}

		cursor := r.page.ServerTime
		if cursor.IsZero() {
			cursor = d.now().UTC()
		}

		var err error
		if r.page.IsDelta {
			err = d.deps.Cache.Merge(ctx, r.collection, r.page.Records, r.page.DeletedIDs, cursor)
		} else {
			err = d.deps.Cache.Replace(ctx, r.collection, r.page.Records, cursor)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("store %s: %w", r.collection, err))
			continue
		}
		stored += len(r.page.Records)
	}
	return stored, errors.Join(errs...)
}

func allFailed(results []fetchResult) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		if r.err == nil {
			return false
		}
	}
	return true
}

// DrainQueue replays queued actions once, strictly in insertion order.
func (d *SyncDriver) DrainQueue(ctx context.Context) (*domain.DrainReport, error) {
	report := &domain.DrainReport{}
	if d.deps.Queue == nil || d.deps.Dispatcher == nil {
		return nil, fmt.Errorf("drain: %w", domain.ErrNotConfigured)
	}

	if !d.deps.Queue.SetProcessing(true) {
		report.Skipped = true
		return report, nil
	}
	defer d.deps.Queue.SetProcessing(false)

	started := d.now()
	leased, err := d.deps.Queue.AcquireDrainLease(ctx)
	if err != nil {
		err = fmt.Errorf("drain: %w", err)
		d.record(ctx, domain.RunDrain, started, domain.RunError, err.Error(), 0)
		return nil, err
	}
	if !leased {
		d.log.Debug("drain skipped: another process holds the drain lease")
		report.Skipped = true
		return report, nil
	}
	defer func() {
		if err := d.deps.Queue.ReleaseDrainLease(context.WithoutCancel(ctx)); err != nil {
			d.log.Warn("%v", err)
		}
	}()

	actions, err := d.deps.Queue.List(ctx)
	if err != nil {
		err = fmt.Errorf("drain: list queue: %w", err)
		d.record(ctx, domain.RunDrain, started, domain.RunError, err.Error(), 0)
		return nil, err
	}
	if len(actions) == 0 {
		report.Skipped = true
		return report, nil
	}

	logger.Section("Drain")
	for i := range actions {
		if ctx.Err() != nil {
			break
		}
		if actions[i].Status != domain.ActionPending {
			continue
		}
		// Renew before every call so a long drain keeps the lease.
		ok, err := d.deps.Queue.AcquireDrainLease(ctx)
		if err != nil {
			d.log.Warn("drain stopped: %v", err)
			break
		}
		if !ok {
			d.log.Warn("drain stopped: drain lease taken by another process")
			break
		}
		d.replay(ctx, actions[i].ID, report)
	}

	d.log.Info("drain finished: %d attempted, %d succeeded, %d requeued, %d failed",
		report.Attempted, report.Succeeded, report.Requeued, report.Failed)

	outcome, msg := domain.RunSuccess, ""
	if report.Requeued+report.Failed > 0 {
		outcome = domain.RunError
		msg = fmt.Sprintf("%d of %d actions failed", report.Requeued+report.Failed, report.Attempted)
	}
	d.record(ctx, domain.RunDrain, started, outcome, msg, report.Succeeded)
	return report, nil
}

// replay claims one action, sends it and records the result in the queue.
// An action removed or claimed since the queue was listed is skipped.
func (d *SyncDriver) replay(ctx context.Context, id string, report *domain.DrainReport) {
	action, claimed, err := d.deps.Queue.Claim(ctx, id)
	if err != nil {
		d.log.Warn("claiming %s: %v", id, err)
		return
	}
	if !claimed {
		d.log.Debug("skipping %s: no longer pending", id)
		return
	}
	report.Attempted++

	callCtx, cancel := context.WithTimeout(ctx, d.cfg.CallTimeout)
	err = d.deps.Dispatcher.Dispatch(callCtx, action)
	cancel()

	if err == nil {
		if err := d.deps.Queue.Dequeue(ctx, action.ID); err != nil {
			d.log.Error("removing replayed action %s: %v", action.ID, err)
		}
		report.Succeeded++
		d.log.Debug("replayed %s %s", action.Kind, action.ID)
		return
	}

	// Shutdown is not the action's fault.
	if ctx.Err() != nil {
		report.Attempted--
		if uerr := d.deps.Queue.UpdateStatus(context.WithoutCancel(ctx), action.ID,
			domain.StatusPatch(domain.ActionPending)); uerr != nil {
			d.log.Warn("releasing %s: %v", action.ID, uerr)
		}
		return
	}

	if action.MaxRetries <= 0 {
		action.MaxRetries = d.cfg.MaxRetries
	}
	action.RetryCount++
	retries, maxRetries := action.RetryCount, action.MaxRetries
	status := domain.ActionPending
	if action.RetriesExhausted() {
		status = domain.ActionFailed
	}

	if uerr := d.deps.Queue.UpdateStatus(ctx, action.ID, domain.FailurePatch(status, retries, err.Error())); uerr != nil {
		d.log.Warn("recording failure of %s: %v", action.ID, uerr)
	}

	if status == domain.ActionFailed {
		report.Failed++
		d.log.Warn("action %s failed permanently after %d attempts: %v", action.ID, retries, err)
		d.notify(ctx, domain.NotificationWarning, "Action could not be synced",
			fmt.Sprintf("%s failed after %d attempts: %v", action.Kind, retries, err))
		return
	}
	report.Requeued++
	d.log.Debug("action %s requeued (%d/%d): %v", action.ID, retries, maxRetries, err)
}

// transition moves the status and returns the new generation.
func (d *SyncDriver) transition(ctx context.Context, status domain.SyncStatus, lastError string) uint64 {
	d.stateMu.Lock()
	d.state.Status = status
	d.state.LastError = lastError
	if status == domain.SyncSuccess {
		d.state.LastSyncAt = d.now().UTC()
	}
	d.generation++
	gen := d.generation
	snapshot := d.state
	d.stateMu.Unlock()

	d.persist(ctx, snapshot)
	return gen
}

func (d *SyncDriver) succeed(ctx context.Context) {
	gen := d.transition(ctx, domain.SyncSuccess, "")
	d.scheduleReset(gen, domain.SyncSuccess, d.cfg.SuccessResetDelay)
}

func (d *SyncDriver) fail(ctx context.Context, err error) {
	gen := d.transition(ctx, domain.SyncError, err.Error())
	d.notify(ctx, domain.NotificationError, "Sync failed", err.Error())
	d.scheduleReset(gen, domain.SyncError, d.cfg.ErrorResetDelay)
}

// scheduleReset returns the status to idle after delay unless it changed meanwhile.
func (d *SyncDriver) scheduleReset(gen uint64, status domain.SyncStatus, delay time.Duration) {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	if d.resetTimer != nil {
		d.resetTimer.Stop()
	}
	d.resetTimer = time.AfterFunc(delay, func() {
		d.stateMu.Lock()
		defer d.stateMu.Unlock()
		if d.generation != gen || d.state.Status != status {
			return
		}
		d.state.Status = domain.SyncIdle
		d.state.LastError = ""
		d.generation++
	})
}

// setOnline records connectivity and returns the previous value.
func (d *SyncDriver) setOnline(ctx context.Context, online bool) bool {
	d.ensureRestored(ctx)

	d.stateMu.Lock()
	prev := d.state.Online
	d.state.Online = online
	snapshot := d.state
	d.stateMu.Unlock()

	if prev != online {
		d.persist(ctx, snapshot)
	}
	return prev
}

func (d *SyncDriver) isOnline() bool {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()
	return d.state.Online
}

func (d *SyncDriver) persist(ctx context.Context, state domain.SyncState) {
	if d.deps.State == nil {
		return
	}
	if err := d.deps.State.Save(context.WithoutCancel(ctx), state); err != nil {
		d.log.Warn("saving sync state: %v", err)
	}
}

func (d *SyncDriver) notify(ctx context.Context, t domain.NotificationType, title, message string) {
	if d.deps.Notifier == nil {
		return
	}
	if _, err := d.deps.Notifier.Notify(context.WithoutCancel(ctx), t, title, message); err != nil {
		d.log.Warn("recording notification: %v", err)
	}
}

// record writes a history entry and prunes old ones.
func (d *SyncDriver) record(
	ctx context.Context,
	kind domain.RunKind,
	started time.Time,
	outcome domain.RunOutcome,
	errMsg string,
	items int,
) {
	if d.deps.History == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	run := &domain.SyncRun{
		Kind:           kind,
		StartedAt:      started.UTC(),
		EndedAt:        d.now().UTC(),
		Outcome:        outcome,
		Error:          errMsg,
		ItemsProcessed: items,
	}
	if err := d.deps.History.RecordRun(ctx, run); err != nil {
		d.log.Warn("recording %s run: %v", kind, err)
		return
	}
	if err := d.deps.History.PruneRuns(ctx, d.cfg.HistoryKeep); err != nil {
		d.log.Warn("pruning history: %v", err)
	}
}

package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
	"github.com/alghazaly/partsync/internal/core/ports/driving"
	"github.com/alghazaly/partsync/internal/logger"
)

// Ensure QueueService implements the interface.
var _ driving.QueueService = (*QueueService)(nil)

// QueueService manages the offline action queue on top of a QueueStore.
type QueueService struct {
	store      driven.QueueStore
	capacity   int
	maxRetries int
	now        func() time.Time
	log        *logger.Logger

	// enqueueMu serialises the capacity check with the append.
	enqueueMu sync.Mutex

	// processing is a single-slot flag: full while a drain runs.
	processing chan struct{}

	// leaseOwner identifies this service to the store's drain lease.
	leaseOwner string
	leaseTTL   time.Duration
}

// NewQueueService creates a queue service.
// Zero capacity or retry values take the defaults from domain.DefaultSyncConfig.
func NewQueueService(store driven.QueueStore, cfg domain.SyncConfig) *QueueService {
	cfg = cfg.WithDefaults()
	return &QueueService{
		store:      store,
		capacity:   cfg.QueueCapacity,
		maxRetries: cfg.MaxRetries,
		now:        time.Now,
		log:        logger.With("queue"),
		processing: make(chan struct{}, 1),
		leaseOwner: uuid.NewString(),
		leaseTTL:   cfg.CallTimeout + leaseGrace,
	}
}

// leaseGrace is added to the call timeout so a lease renewed before each
// replay outlives the call it guards.
const leaseGrace = 30 * time.Second

// Enqueue appends a new pending action.
func (s *QueueService) Enqueue(ctx context.Context, req domain.EnqueueRequest) (*domain.OfflineAction, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", req.Kind, err)
	}

	s.enqueueMu.Lock()
	defer s.enqueueMu.Unlock()

	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count queue: %w", err)
	}
	if count >= s.capacity {
		s.log.Warn("rejecting %s: queue holds %d of %d actions", req.Kind, count, s.capacity)
		return nil, fmt.Errorf("enqueue %s: %w", req.Kind, domain.ErrQueueFull)
	}

	action := &domain.OfflineAction{
		ID:         uuid.New().String(),
		Kind:       req.Kind,
		Payload:    req.Payload,
		Status:     domain.ActionPending,
		RetryCount: 0,
		MaxRetries: s.maxRetries,
		CreatedAt:  s.now().UTC(),
	}
	if req.Kind == domain.ActionGenericRequest {
		action.Endpoint = req.Endpoint
		action.Method = strings.ToUpper(req.Method)
	}

	if err := s.store.Append(ctx, action); err != nil {
		return nil, fmt.Errorf("append action: %w", err)
	}

	s.log.Debug("queued %s action %s", action.Kind, action.ID)
	return action, nil
}

// Dequeue removes an action. Absent IDs are ignored.
func (s *QueueService) Dequeue(ctx context.Context, id string) error {
	removed, err := s.store.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("remove action: %w", err)
	}
	if !removed {
		s.log.Debug("dequeue %s: not queued", id)
	}
	return nil
}

// UpdateStatus merges a patch into an action. Absent IDs are ignored.
func (s *QueueService) UpdateStatus(ctx context.Context, id string, patch domain.ActionPatch) error {
	if patch.Status != nil && !patch.Status.IsValid() {
		return fmt.Errorf("update %s: %w", id, domain.ErrInvalidInput)
	}
	found, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return fmt.Errorf("update action: %w", err)
	}
	if !found {
		s.log.Debug("update %s: not queued", id)
	}
	return nil
}

// Claim moves a pending action to processing and returns its stored state.
// Returns false when the action was removed or is no longer pending.
func (s *QueueService) Claim(ctx context.Context, id string) (*domain.OfflineAction, bool, error) {
	action, ok, err := s.store.Claim(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("claim action: %w", err)
	}
	return action, ok, nil
}

// Get returns a single action.
func (s *QueueService) Get(ctx context.Context, id string) (*domain.OfflineAction, error) {
	return s.store.Get(ctx, id)
}

// List returns the queue in insertion order.
func (s *QueueService) List(ctx context.Context) ([]domain.OfflineAction, error) {
	return s.store.List(ctx)
}

// SetProcessing sets or clears the global drain flag.
func (s *QueueService) SetProcessing(on bool) bool {
	if on {
		select {
		case s.processing <- struct{}{}:
			return true
		default:
			return false
		}
	}
	select {
	case <-s.processing:
	default:
	}
	return true
}

// IsProcessing reports whether a drain holds the flag.
func (s *QueueService) IsProcessing() bool {
	return len(s.processing) == 1
}

// AcquireDrainLease takes or renews the store-wide drain lease.
// Returns false while another process holds it.
func (s *QueueService) AcquireDrainLease(ctx context.Context) (bool, error) {
	ok, err := s.store.AcquireLease(ctx, s.leaseOwner, s.leaseTTL)
	if err != nil {
		return false, fmt.Errorf("acquire drain lease: %w", err)
	}
	return ok, nil
}

// ReleaseDrainLease gives up the drain lease.
func (s *QueueService) ReleaseDrainLease(ctx context.Context) error {
	if err := s.store.ReleaseLease(ctx, s.leaseOwner); err != nil {
		return fmt.Errorf("release drain lease: %w", err)
	}
	return nil
}

// RetryFailed resets failed actions to pending with a fresh retry budget.
func (s *QueueService) RetryFailed(ctx context.Context, id string) (int, error) {
	if id != "" {
		action, err := s.store.Get(ctx, id)
		if err != nil {
			return 0, err
		}
		if action.Status != domain.ActionFailed {
			return 0, nil
		}
		return 1, s.resetFailed(ctx, id)
	}

	actions, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list actions: %w", err)
	}

	reset := 0
	for i := range actions {
		if actions[i].Status != domain.ActionFailed {
			continue
		}
		if err := s.resetFailed(ctx, actions[i].ID); err != nil {
			return reset, err
		}
		reset++
	}
	return reset, nil
}

func (s *QueueService) resetFailed(ctx context.Context, id string) error {
	if _, err := s.store.Update(ctx, id, domain.FailurePatch(domain.ActionPending, 0, "")); err != nil {
		return fmt.Errorf("reset action %s: %w", id, err)
	}
	s.log.Info("action %s returned to pending for manual retry", id)
	return nil
}

// Stats summarises the queue.
func (s *QueueService) Stats(ctx context.Context) (*domain.QueueStats, error) {
	actions, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}

	stats := &domain.QueueStats{Total: len(actions), Capacity: s.capacity}
	for i := range actions {
		switch actions[i].Status {
		case domain.ActionPending:
			stats.Pending++
		case domain.ActionProcessing:
			stats.Processing++
		case domain.ActionFailed:
			stats.Failed++
		}
	}
	return stats, nil
}

// Recover returns actions stranded in processing to pending.
// A crash mid-drain leaves the entry it was replaying in processing.
// Nothing is touched while another process holds the drain lease.
func (s *QueueService) Recover(ctx context.Context) (int, error) {
	ok, err := s.AcquireDrainLease(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		s.log.Debug("recover skipped: another process is draining")
		return 0, nil
	}
	defer func() {
		if err := s.ReleaseDrainLease(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("%v", err)
		}
	}()

	actions, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list actions: %w", err)
	}

	recovered := 0
	for i := range actions {
		if actions[i].Status != domain.ActionProcessing {
			continue
		}
		if _, err := s.store.Update(ctx, actions[i].ID, domain.StatusPatch(domain.ActionPending)); err != nil {
			return recovered, fmt.Errorf("recover action %s: %w", actions[i].ID, err)
		}
		recovered++
	}
	if recovered > 0 {
		s.log.Info("recovered %d actions left in processing", recovered)
	}
	return recovered, nil
}

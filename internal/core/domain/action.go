package domain

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// ActionKind enumerates the mutations that can be queued while offline.
type ActionKind string

const (
	// ActionAddToCart adds a product to the cart.
	ActionAddToCart ActionKind = "add_to_cart"
	// ActionUpdateCartItem changes the quantity of a cart line.
	ActionUpdateCartItem ActionKind = "update_cart_item"
	// ActionClearCart empties the cart.
	ActionClearCart ActionKind = "clear_cart"
	// ActionCreateOrder places an order.
	ActionCreateOrder ActionKind = "create_order"
	// ActionToggleFavorite flips a product's favourite flag.
	ActionToggleFavorite ActionKind = "toggle_favorite"
	// ActionGenericRequest replays an arbitrary method, endpoint and payload.
	ActionGenericRequest ActionKind = "generic_request"
)

// AllActionKinds returns every supported action kind in display order.
func AllActionKinds() []ActionKind {
	return []ActionKind{
		ActionAddToCart,
		ActionUpdateCartItem,
		ActionClearCart,
		ActionCreateOrder,
		ActionToggleFavorite,
		ActionGenericRequest,
	}
}

// IsValid reports whether k is one of the enumerated kinds.
func (k ActionKind) IsValid() bool {
	for _, known := range AllActionKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// ActionStatus is the lifecycle state of a queued action.
type ActionStatus string

const (
	// ActionPending waits for the next drain.
	ActionPending ActionStatus = "pending"
	// ActionProcessing is being replayed right now.
	ActionProcessing ActionStatus = "processing"
	// ActionFailed exhausted its retries and needs manual attention.
	ActionFailed ActionStatus = "failed"
)

// IsValid reports whether s is a known status.
func (s ActionStatus) IsValid() bool {
	switch s {
	case ActionPending, ActionProcessing, ActionFailed:
		return true
	}
	return false
}

// OfflineAction is a user-initiated mutation recorded while disconnected.
type OfflineAction struct {
	// ID is the unique identifier for the action.
	ID string `json:"id" yaml:"id"`

	// Kind selects the remote call used to replay the action.
	Kind ActionKind `json:"kind" yaml:"kind"`

	// Payload is the kind-specific request body, kept opaque.
	Payload json.RawMessage `json:"payload,omitempty" yaml:"-"`

	// Endpoint is the request path for generic requests.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// Method is the HTTP method for generic requests.
	Method string `json:"method,omitempty" yaml:"method,omitempty"`

	// Status is the current lifecycle state.
	Status ActionStatus `json:"status" yaml:"status"`

	// RetryCount is how many replays have failed so far.
	RetryCount int `json:"retry_count" yaml:"retry_count"`

	// MaxRetries is the number of failures after which the action is failed permanently.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// LastError contains the last replay error, if any.
	LastError string `json:"last_error,omitempty" yaml:"last_error,omitempty"`

	// CreatedAt is when the action was enqueued.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// Sequence orders actions by insertion. Assigned by the store.
	Sequence int64 `json:"sequence" yaml:"sequence"`
}

// RetriesExhausted reports whether the retry budget is used up.
func (a *OfflineAction) RetriesExhausted() bool {
	return a.RetryCount >= a.MaxRetries
}

// ActionPatch carries a partial update for a queued action.
// Nil fields are left untouched.
type ActionPatch struct {
	Status     *ActionStatus
	RetryCount *int
	LastError  *string
}

// Apply merges the patch into the action.
func (p ActionPatch) Apply(a *OfflineAction) {
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.RetryCount != nil {
		a.RetryCount = *p.RetryCount
	}
	if p.LastError != nil {
		a.LastError = *p.LastError
	}
}

// StatusPatch builds a patch that only changes the status.
func StatusPatch(status ActionStatus) ActionPatch {
	return ActionPatch{Status: &status}
}

// FailurePatch builds a patch recording a failed attempt.
func FailurePatch(status ActionStatus, retryCount int, message string) ActionPatch {
	return ActionPatch{Status: &status, RetryCount: &retryCount, LastError: &message}
}

// EnqueueRequest describes a new action before the queue assigns identity.
type EnqueueRequest struct {
	Kind     ActionKind      `json:"kind"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Endpoint string          `json:"endpoint,omitempty"`
	Method   string          `json:"method,omitempty"`
}

// Validate checks the request against the kind's requirements.
func (r *EnqueueRequest) Validate() error {
	if !r.Kind.IsValid() {
		return ErrInvalidInput
	}
	if len(r.Payload) > 0 && !json.Valid(r.Payload) {
		return ErrInvalidInput
	}
	if r.Kind == ActionGenericRequest {
		if strings.TrimSpace(r.Endpoint) == "" {
			return ErrInvalidInput
		}
		switch strings.ToUpper(r.Method) {
		case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			return ErrInvalidInput
		}
	}
	return nil
}

// QueueStats summarises the queue by status.
type QueueStats struct {
	Total      int `json:"total" yaml:"total"`
	Pending    int `json:"pending" yaml:"pending"`
	Processing int `json:"processing" yaml:"processing"`
	Failed     int `json:"failed" yaml:"failed"`
	Capacity   int `json:"capacity" yaml:"capacity"`
}

// DrainReport summarises one pass over the queue.
type DrainReport struct {
	Attempted int `json:"attempted" yaml:"attempted"`
	Succeeded int `json:"succeeded" yaml:"succeeded"`
	Requeued  int `json:"requeued" yaml:"requeued"`
	Failed    int `json:"failed" yaml:"failed"`
	// Skipped is true when the drain did not run (empty queue or drain in progress).
	Skipped bool `json:"skipped" yaml:"skipped"`
}

package driven

import (
	"context"
	"encoding/json"
	"time"

	"github.com/alghazaly/partsync/internal/core/domain"
)

// Response is the result wrapper returned by remote calls.
type Response struct {
	// Data is the unwrapped response body.
	Data json.RawMessage
}

// CallOptions carries per-call metadata for replayed mutations.
type CallOptions struct {
	// IdempotencyKey lets the remote drop duplicate replays.
	IdempotencyKey string
}

// CartAPI mutates the remote cart.
type CartAPI interface {
	AddItem(ctx context.Context, payload json.RawMessage, opts CallOptions) (*Response, error)
	UpdateItem(ctx context.Context, payload json.RawMessage, opts CallOptions) (*Response, error)
	Clear(ctx context.Context, opts CallOptions) (*Response, error)
}

// OrderAPI places orders.
type OrderAPI interface {
	Create(ctx context.Context, payload json.RawMessage, opts CallOptions) (*Response, error)
}

// FavoriteAPI toggles favourites.
type FavoriteAPI interface {
	Toggle(ctx context.Context, payload json.RawMessage, opts CallOptions) (*Response, error)
}

// RequestDoer performs an arbitrary call for generic actions.
type RequestDoer interface {
	Do(ctx context.Context, method, endpoint string, payload json.RawMessage, opts CallOptions) (*Response, error)
}

// CollectionFetcher reads collections from the remote.
type CollectionFetcher interface {
	// FetchCollection returns the collection.
	// A non-zero since requests a delta page when the collection supports it.
	FetchCollection(ctx context.Context, c domain.Collection, since time.Time) (*domain.CollectionPage, error)
}

// ConnectivityProbe checks whether the remote is reachable.
type ConnectivityProbe interface {
	// Probe returns true when the remote answered.
	Probe(ctx context.Context) bool
}

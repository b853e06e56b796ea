package services

import (
	"context"
	"fmt"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
)

// ActionDispatcher replays a queued action with the remote call matching its kind.
type ActionDispatcher struct {
	cart      driven.CartAPI
	orders    driven.OrderAPI
	favorites driven.FavoriteAPI
	requests  driven.RequestDoer
}

// NewActionDispatcher creates a dispatcher. Any API may be nil; actions that
// need a missing API fail with domain.ErrNotConfigured.
func NewActionDispatcher(
	cart driven.CartAPI,
	orders driven.OrderAPI,
	favorites driven.FavoriteAPI,
	requests driven.RequestDoer,
) *ActionDispatcher {
	return &ActionDispatcher{
		cart:      cart,
		orders:    orders,
		favorites: favorites,
		requests:  requests,
	}
}

// Dispatch sends the action to the remote.
func (d *ActionDispatcher) Dispatch(ctx context.Context, action *domain.OfflineAction) error {
	opts := driven.CallOptions{IdempotencyKey: action.ID}

	var err error
	switch action.Kind {
	case domain.ActionAddToCart:
		if d.cart == nil {
			return fmt.Errorf("dispatch %s: cart api: %w", action.Kind, domain.ErrNotConfigured)
		}
		_, err = d.cart.AddItem(ctx, action.Payload, opts)
	case domain.ActionUpdateCartItem:
		if d.cart == nil {
			return fmt.Errorf("dispatch %s: cart api: %w", action.Kind, domain.ErrNotConfigured)
		}
		_, err = d.cart.UpdateItem(ctx, action.Payload, opts)
	case domain.ActionClearCart:
		if d.cart == nil {
			return fmt.Errorf("dispatch %s: cart api: %w", action.Kind, domain.ErrNotConfigured)
		}
		_, err = d.cart.Clear(ctx, opts)
	case domain.ActionCreateOrder:
		if d.orders == nil {
			return fmt.Errorf("dispatch %s: order api: %w", action.Kind, domain.ErrNotConfigured)
		}
		_, err = d.orders.Create(ctx, action.Payload, opts)
	case domain.ActionToggleFavorite:
		if d.favorites == nil {
			return fmt.Errorf("dispatch %s: favorite api: %w", action.Kind, domain.ErrNotConfigured)
		}
		_, err = d.favorites.Toggle(ctx, action.Payload, opts)
	case domain.ActionGenericRequest:
		if d.requests == nil {
			return fmt.Errorf("dispatch %s: request api: %w", action.Kind, domain.ErrNotConfigured)
		}
		_, err = d.requests.Do(ctx, action.Method, action.Endpoint, action.Payload, opts)
	default:
		return fmt.Errorf("dispatch %s: %w", action.Kind, domain.ErrInvalidInput)
	}

	if err != nil {
		return fmt.Errorf("dispatch %s: %w", action.Kind, err)
	}
	return nil
}

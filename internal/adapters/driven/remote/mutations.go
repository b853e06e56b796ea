package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
)

// AddItem adds a product to the cart.
func (c *Client) AddItem(ctx context.Context, payload json.RawMessage, opts driven.CallOptions) (*driven.Response, error) {
	return c.mutate(ctx, http.MethodPost, "/cart/add", payload, opts)
}

// UpdateItem changes a cart line.
func (c *Client) UpdateItem(ctx context.Context, payload json.RawMessage, opts driven.CallOptions) (*driven.Response, error) {
	return c.mutate(ctx, http.MethodPut, "/cart/update", payload, opts)
}

// Clear empties the cart.
func (c *Client) Clear(ctx context.Context, opts driven.CallOptions) (*driven.Response, error) {
	return c.mutate(ctx, http.MethodDelete, "/cart/clear", nil, opts)
}

// Create places an order.
func (c *Client) Create(ctx context.Context, payload json.RawMessage, opts driven.CallOptions) (*driven.Response, error) {
	return c.mutate(ctx, http.MethodPost, "/orders", payload, opts)
}

// Toggle flips a product in the favorites list.
func (c *Client) Toggle(ctx context.Context, payload json.RawMessage, opts driven.CallOptions) (*driven.Response, error) {
	return c.mutate(ctx, http.MethodPost, "/favorites/toggle", payload, opts)
}

// Do sends an arbitrary request relative to the API root.
func (c *Client) Do(
	ctx context.Context,
	method, endpoint string,
	payload json.RawMessage,
	opts driven.CallOptions,
) (*driven.Response, error) {
	method = strings.ToUpper(method)
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return nil, fmt.Errorf("method %q: %w", method, domain.ErrInvalidInput)
	}
	if strings.Contains(endpoint, "://") {
		return nil, fmt.Errorf("endpoint %q must be relative: %w", endpoint, domain.ErrInvalidInput)
	}
	return c.mutate(ctx, method, endpoint, payload, opts)
}

func (c *Client) mutate(
	ctx context.Context,
	method, path string,
	payload json.RawMessage,
	opts driven.CallOptions,
) (*driven.Response, error) {
	data, err := c.do(ctx, method, path, nil, payload, opts)
	if err != nil {
		return nil, err
	}
	return &driven.Response{Data: data}, nil
}

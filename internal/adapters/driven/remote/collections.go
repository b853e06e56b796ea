package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
)

// deltaPage is the /delta-sync response. Records sit under the collection name.
type deltaPage struct {
	DeletedIDs []string `json:"deleted_ids"`
	ServerTime string   `json:"server_time"`
	IsDelta    bool     `json:"is_delta"`
}

// hasRecords reports whether the delta body carries a record array.
// An empty change set may omit it.
func (deltaPage) hasRecords(raw json.RawMessage, collection domain.Collection) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return false
	}
	_, named := fields[string(collection)]
	_, items := fields["items"]
	return named || items
}

// collectionPath maps a collection to its URL segment ("car_brands" -> "car-brands").
func collectionPath(c domain.Collection) string {
	return strings.ReplaceAll(string(c), "_", "-")
}

// FetchCollection fetches a collection in full, or changes since the given
// time when since is non-zero and the collection has a delta endpoint.
func (c *Client) FetchCollection(
	ctx context.Context,
	collection domain.Collection,
	since time.Time,
) (*domain.CollectionPage, error) {
	if !collection.IsValid() {
		return nil, fmt.Errorf("collection %q: %w", collection, domain.ErrInvalidInput)
	}

	if !since.IsZero() && collection.SupportsDelta() {
		return c.fetchDelta(ctx, collection, since)
	}

	raw, err := c.do(ctx, http.MethodGet, "/"+collectionPath(collection), nil, nil, driven.CallOptions{})
	if err != nil {
		return nil, err
	}

	items, err := itemsOf(raw, collection)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}

	return &domain.CollectionPage{
		Collection: collection,
		Records:    c.toRecords(collection, items),
	}, nil
}

func (c *Client) fetchDelta(
	ctx context.Context,
	collection domain.Collection,
	since time.Time,
) (*domain.CollectionPage, error) {
	query := url.Values{"last_sync": {since.UTC().Format(time.RFC3339)}}
	raw, err := c.do(ctx, http.MethodGet, "/delta-sync/"+collectionPath(collection), query, nil, driven.CallOptions{})
	if err != nil {
		return nil, err
	}

	var page deltaPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("decode %s delta: %w", collection, err)
	}
	var items []json.RawMessage
	if page.hasRecords(raw, collection) {
		if items, err = itemsOf(raw, collection); err != nil {
			return nil, fmt.Errorf("decode %s delta: %w", collection, err)
		}
	}

	result := &domain.CollectionPage{
		Collection: collection,
		Records:    c.toRecords(collection, items),
		DeletedIDs: page.DeletedIDs,
		IsDelta:    page.IsDelta,
	}
	if page.ServerTime != "" {
		if t, err := parseServerTime(page.ServerTime); err == nil {
			result.ServerTime = t
		} else {
			c.log.Warn("%s: unparseable server_time %q", collection, page.ServerTime)
		}
	}
	return result, nil
}

// itemsOf finds the record array in a response: the body itself, or the
// field named after the collection, or an "items" field.
func itemsOf(raw json.RawMessage, collection domain.Collection) ([]json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var items []json.RawMessage
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for _, key := range []string{string(collection), "items"} {
		field, ok := fields[key]
		if !ok || string(field) == "null" {
			continue
		}
		if err := json.Unmarshal(field, &items); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		return items, nil
	}
	return nil, fmt.Errorf("no %q array in response", collection)
}

// toRecords keys each item by _id or id; items without one are dropped.
func (c *Client) toRecords(collection domain.Collection, items []json.RawMessage) []domain.Record {
	records := make([]domain.Record, 0, len(items))
	for _, item := range items {
		id, ok := recordID(item)
		if !ok {
			c.log.Warn("%s: dropping record without an id", collection)
			continue
		}
		records = append(records, domain.Record{ID: id, Data: item})
	}
	return records
}

func recordID(item json.RawMessage) (string, bool) {
	var keys struct {
		MongoID json.RawMessage `json:"_id"`
		ID      json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(item, &keys); err != nil {
		return "", false
	}
	for _, raw := range []json.RawMessage{keys.MongoID, keys.ID} {
		if id, ok := scalarID(raw); ok {
			return id, true
		}
	}
	return "", false
}

// scalarID accepts string and numeric IDs.
func scalarID(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return strconv.FormatInt(i, 10), true
		}
		return n.String(), true
	}
	return "", false
}

// parseServerTime accepts RFC3339 with or without a zone.
func parseServerTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02T15:04:05.999999", value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

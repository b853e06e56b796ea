package domain

import (
	"encoding/json"
	"time"
)

// Collection names a slice of cached reference data.
type Collection string

// Reference collections, fetched for every actor.
const (
	CollectionCategories    Collection = "categories"
	CollectionCarBrands     Collection = "car_brands"
	CollectionCarModels     Collection = "car_models"
	CollectionProductBrands Collection = "product_brands"
	CollectionProducts      Collection = "products"
)

// Role-gated collections, fetched only for elevated actors.
const (
	CollectionOrders       Collection = "orders"
	CollectionCustomers    Collection = "customers"
	CollectionSuppliers    Collection = "suppliers"
	CollectionDistributors Collection = "distributors"
)

// ReferenceCollections returns the collections every cycle refreshes.
func ReferenceCollections() []Collection {
	return []Collection{
		CollectionCategories,
		CollectionCarBrands,
		CollectionCarModels,
		CollectionProductBrands,
		CollectionProducts,
	}
}

// RoleGatedCollections returns the collections reserved for elevated actors.
func RoleGatedCollections() []Collection {
	return []Collection{
		CollectionOrders,
		CollectionCustomers,
		CollectionSuppliers,
		CollectionDistributors,
	}
}

// AllCollections returns reference then role-gated collections.
func AllCollections() []Collection {
	return append(ReferenceCollections(), RoleGatedCollections()...)
}

// IsValid reports whether c is a known collection.
func (c Collection) IsValid() bool {
	for _, known := range AllCollections() {
		if c == known {
			return true
		}
	}
	return false
}

// IsRoleGated reports whether c requires an elevated actor.
func (c Collection) IsRoleGated() bool {
	for _, gated := range RoleGatedCollections() {
		if c == gated {
			return true
		}
	}
	return false
}

// SupportsDelta reports whether the remote offers an incremental endpoint for c.
func (c Collection) SupportsDelta() bool {
	switch c {
	case CollectionCategories, CollectionCarBrands, CollectionCarModels,
		CollectionProductBrands, CollectionProducts, CollectionOrders:
		return true
	}
	return false
}

// Record is one cached item of a collection.
type Record struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// CollectionPage is the result of fetching one collection.
type CollectionPage struct {
	// Collection is the collection that was fetched.
	Collection Collection

	// Records holds new or changed items.
	Records []Record

	// DeletedIDs lists items removed since the cursor. Only set on delta pages.
	DeletedIDs []string

	// ServerTime is the remote clock at fetch time, used as the next cursor.
	ServerTime time.Time

	// IsDelta is true when Records only hold changes since the cursor.
	IsDelta bool
}

// CollectionInfo describes one cached collection.
type CollectionInfo struct {
	Collection Collection `json:"collection" yaml:"collection"`
	Count      int        `json:"count" yaml:"count"`
	Cursor     time.Time  `json:"cursor" yaml:"cursor"`
}

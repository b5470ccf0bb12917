package store

import (
	"context"
	"errors"
)

// Collection names persisted in the document store. These match the field
// layout consumed by the browser client and must not be renamed.
const (
	Chores        = "chores"
	FamilyMembers = "familyMembers"
	FamilyInvites = "familyInvites"
)

// ErrNotFound is returned when a referenced document does not exist,
// typically because of a race with a concurrent delete.
var ErrNotFound = errors.New("document not found")

// Filter is an equality constraint on a document field
type Filter struct {
	Field string
	Value any
}

// Order sorts a query result by a single field
type Order struct {
	Field string
	Desc  bool
}

// Document is a raw document as held by the store
type Document struct {
	ID   string
	Data map[string]any
}

// Tx is the write surface available inside a transaction. All operations
// either commit together or not at all.
type Tx interface {
	Create(collection string, data map[string]any) (string, error)
	Update(collection, id string, updates map[string]any) error
}

// Subscription is a standing query. Snapshots delivers the full current
// result set after every matching change, in consistent monotonically
// advancing order. The consumer must call Stop when done or the
// subscription leaks.
type Subscription interface {
	Snapshots() <-chan []Document
	Err() error
	Stop()
}

// Store is the document store capability the rest of the application is
// written against. Production uses Firestore; tests use the in-memory
// implementation.
type Store interface {
	Create(ctx context.Context, collection string, data map[string]any) (string, error)
	Update(ctx context.Context, collection, id string, updates map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Get(ctx context.Context, collection, id string) (Document, error)
	Query(ctx context.Context, collection string, filters []Filter, order *Order) ([]Document, error)
	Subscribe(ctx context.Context, collection string, filters []Filter, order *Order) (Subscription, error)
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
}

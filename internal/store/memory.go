package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store with the same snapshot-then-deltas
// subscription contract as the Firestore implementation. It backs the test
// suite and is safe for concurrent use.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]any
	subs        map[*memorySubscription]struct{}
}

// NewMemory creates an empty in-memory store
func NewMemory() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]map[string]any),
		subs:        make(map[*memorySubscription]struct{}),
	}
}

// Create adds a document with a generated id
func (s *MemoryStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.put(collection, id, data)
	s.notifyLocked(collection)
	return id, nil
}

// Update applies field updates to an existing document
func (s *MemoryStore) Update(ctx context.Context, collection, id string, updates map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for field, value := range updates {
		doc[field] = value
	}
	s.notifyLocked(collection)
	return nil
}

// Delete removes a document by id; deleting a missing document is a no-op
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if docs, ok := s.collections[collection]; ok {
		delete(docs, id)
		s.notifyLocked(collection)
	}
	return nil
}

// Get fetches a single document by id
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Data: copyData(data)}, nil
}

// Query runs a filtered, optionally ordered read over a collection
func (s *MemoryStore) Query(ctx context.Context, collection string, filters []Filter, order *Order) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryLocked(collection, filters, order), nil
}

// Subscribe registers a live query. The current result set is delivered
// first, then a fresh snapshot after every mutation of the collection.
func (s *MemoryStore) Subscribe(ctx context.Context, collection string, filters []Filter, order *Order) (Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	sub := &memorySubscription{
		store:      s,
		collection: collection,
		filters:    filters,
		order:      order,
		ch:         make(chan []Document, 1),
		wake:       make(chan struct{}, 1),
		cancel:     cancel,
	}

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	sub.wakeUp()
	go sub.pump(ctx)
	return sub, nil
}

// RunTransaction executes fn atomically: either every buffered write is
// applied, or none are. Subscribers observe the combined result as a single
// snapshot.
func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	tx := &memoryTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range tx.ops {
		if err := op(); err != nil {
			return err
		}
	}
	for collection := range tx.touched {
		s.notifyLocked(collection)
	}
	return nil
}

func (s *MemoryStore) put(collection, id string, data map[string]any) {
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]map[string]any)
	}
	s.collections[collection][id] = copyData(data)
}

func (s *MemoryStore) queryLocked(collection string, filters []Filter, order *Order) []Document {
	var docs []Document
	for id, data := range s.collections[collection] {
		if matches(data, filters) {
			docs = append(docs, Document{ID: id, Data: copyData(data)})
		}
	}

	if order != nil {
		sort.SliceStable(docs, func(i, j int) bool {
			a, b := docs[i].Data[order.Field], docs[j].Data[order.Field]
			if order.Desc {
				return compareValues(b, a)
			}
			return compareValues(a, b)
		})
	} else {
		// deterministic order for tests
		sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	}
	return docs
}

func (s *MemoryStore) notifyLocked(collection string) {
	for sub := range s.subs {
		if sub.collection == collection {
			sub.wakeUp()
		}
	}
}

func (s *MemoryStore) removeSub(sub *memorySubscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, sub)
}

func matches(data map[string]any, filters []Filter) bool {
	for _, f := range filters {
		if data[f.Field] != f.Value {
			return false
		}
	}
	return true
}

func compareValues(a, b any) bool {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Before(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return av < bv
		}
	case int:
		if bv, ok := b.(int); ok {
			return av < bv
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return av < bv
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return av < bv
		}
	}
	return false
}

func copyData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if slice, ok := v.([]string); ok {
			out[k] = append([]string(nil), slice...)
			continue
		}
		out[k] = v
	}
	return out
}

type memorySubscription struct {
	store      *MemoryStore
	collection string
	filters    []Filter
	order      *Order
	ch         chan []Document
	wake       chan struct{}
	cancel     context.CancelFunc
	stopOnce   sync.Once
}

// wakeUp coalesces pending notifications; the pump recomputes the latest
// result set, so dropped wakeups never skip state.
func (s *memorySubscription) wakeUp() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *memorySubscription) pump(ctx context.Context) {
	defer close(s.ch)
	defer s.store.removeSub(s)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		}

		s.store.mu.Lock()
		docs := s.store.queryLocked(s.collection, s.filters, s.order)
		s.store.mu.Unlock()

		select {
		case s.ch <- docs:
		case <-ctx.Done():
			return
		}
	}
}

func (s *memorySubscription) Snapshots() <-chan []Document {
	return s.ch
}

func (s *memorySubscription) Err() error {
	return nil
}

func (s *memorySubscription) Stop() {
	s.stopOnce.Do(s.cancel)
}

type memoryTx struct {
	store   *MemoryStore
	ops     []func() error
	touched map[string]struct{}
}

func (t *memoryTx) Create(collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	snapshot := copyData(data)
	t.ops = append(t.ops, func() error {
		t.store.put(collection, id, snapshot)
		return nil
	})
	t.touch(collection)
	return id, nil
}

func (t *memoryTx) Update(collection, id string, updates map[string]any) error {
	snapshot := copyData(updates)
	t.ops = append(t.ops, func() error {
		doc, ok := t.store.collections[collection][id]
		if !ok {
			return ErrNotFound
		}
		for field, value := range snapshot {
			doc[field] = value
		}
		return nil
	})
	t.touch(collection)
	return nil
}

func (t *memoryTx) touch(collection string) {
	if t.touched == nil {
		t.touched = make(map[string]struct{})
	}
	t.touched[collection] = struct{}{}
}

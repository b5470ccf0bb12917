package store

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements Store on Cloud Firestore
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestore connects to Firestore for the given project. A credentials
// file is optional; without one, Application Default Credentials are used.
func NewFirestore(ctx context.Context, projectID, credentialsFile string) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	return &FirestoreStore{client: client}, nil
}

// Close releases the underlying client
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

// Create adds a document with a generated id
func (s *FirestoreStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("failed to create document in %s: %w", collection, err)
	}
	return ref.ID, nil
}

// Update applies field updates to an existing document
func (s *FirestoreStore) Update(ctx context.Context, collection, id string, updates map[string]any) error {
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, toFieldUpdates(updates))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes a document by id. Deleting a missing document is not an
// error, matching Firestore semantics.
func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Get fetches a single document by id
func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

// Query runs a filtered, optionally ordered read over a collection
func (s *FirestoreStore) Query(ctx context.Context, collection string, filters []Filter, order *Order) ([]Document, error) {
	it := s.buildQuery(collection, filters, order).Documents(ctx)
	defer it.Stop()

	var docs []Document
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", collection, err)
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

// Subscribe opens a live snapshot listener over a filtered query
func (s *FirestoreStore) Subscribe(ctx context.Context, collection string, filters []Filter, order *Order) (Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	sub := &firestoreSubscription{
		ch:     make(chan []Document, 1),
		cancel: cancel,
	}

	it := s.buildQuery(collection, filters, order).Snapshots(ctx)
	go sub.pump(ctx, it)

	return sub, nil
}

// RunTransaction executes fn atomically
func (s *FirestoreStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	return s.client.RunTransaction(ctx, func(ctx context.Context, t *firestore.Transaction) error {
		return fn(&firestoreTx{client: s.client, tx: t})
	})
}

func (s *FirestoreStore) buildQuery(collection string, filters []Filter, order *Order) firestore.Query {
	q := s.client.Collection(collection).Query
	for _, f := range filters {
		q = q.Where(f.Field, "==", f.Value)
	}
	if order != nil {
		dir := firestore.Asc
		if order.Desc {
			dir = firestore.Desc
		}
		q = q.OrderBy(order.Field, dir)
	}
	return q
}

func toFieldUpdates(updates map[string]any) []firestore.Update {
	out := make([]firestore.Update, 0, len(updates))
	for field, value := range updates {
		out = append(out, firestore.Update{Path: field, Value: value})
	}
	return out
}

type firestoreSubscription struct {
	ch     chan []Document
	cancel context.CancelFunc

	mu  sync.Mutex
	err error
}

func (s *firestoreSubscription) pump(ctx context.Context, it *firestore.QuerySnapshotIterator) {
	defer close(s.ch)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			if status.Code(err) != codes.Canceled {
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
			}
			return
		}

		var docs []Document
		docIt := snap.Documents
		for {
			d, err := docIt.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
				return
			}
			docs = append(docs, Document{ID: d.Ref.ID, Data: d.Data()})
		}

		select {
		case s.ch <- docs:
		case <-ctx.Done():
			return
		}
	}
}

func (s *firestoreSubscription) Snapshots() <-chan []Document {
	return s.ch
}

func (s *firestoreSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *firestoreSubscription) Stop() {
	s.cancel()
}

type firestoreTx struct {
	client *firestore.Client
	tx     *firestore.Transaction
}

func (t *firestoreTx) Create(collection string, data map[string]any) (string, error) {
	ref := t.client.Collection(collection).NewDoc()
	if err := t.tx.Create(ref, data); err != nil {
		return "", fmt.Errorf("failed to create document in %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (t *firestoreTx) Update(collection, id string, updates map[string]any) error {
	ref := t.client.Collection(collection).Doc(id)
	if err := t.tx.Update(ref, toFieldUpdates(updates)); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	return nil
}

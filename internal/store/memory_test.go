package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func waitSnapshot(t *testing.T, ch <-chan []Document) []Document {
	t.Helper()
	select {
	case docs, ok := <-ch:
		if !ok {
			t.Fatal("subscription channel closed unexpectedly")
		}
		return docs
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return nil
}

func TestMemoryStoreCRUD(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	id, err := s.Create(ctx, "chores", map[string]any{"title": "Dishes", "status": "active"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if id == "" {
		t.Fatal("Create() returned empty id")
	}

	doc, err := s.Get(ctx, "chores", id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if doc.Data["title"] != "Dishes" {
		t.Errorf("Get() title = %v, want Dishes", doc.Data["title"])
	}

	if err := s.Update(ctx, "chores", id, map[string]any{"status": "completed"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	doc, _ = s.Get(ctx, "chores", id)
	if doc.Data["status"] != "completed" {
		t.Errorf("status after update = %v, want completed", doc.Data["status"])
	}

	if err := s.Delete(ctx, "chores", id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, "chores", id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreUpdateMissing(t *testing.T) {
	s := NewMemory()
	err := s.Update(context.Background(), "chores", "nope", map[string]any{"status": "completed"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() on missing doc error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreQueryFilterAndOrder(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, title := range []string{"first", "second", "third"} {
		if _, err := s.Create(ctx, "chores", map[string]any{
			"title":     title,
			"status":    "active",
			"createdAt": base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	if _, err := s.Create(ctx, "chores", map[string]any{
		"title":     "done",
		"status":    "completed",
		"createdAt": base.Add(time.Hour),
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	docs, err := s.Query(ctx, "chores", []Filter{{Field: "status", Value: "active"}}, &Order{Field: "createdAt", Desc: true})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("Query() returned %d docs, want 3", len(docs))
	}
	want := []string{"third", "second", "first"}
	for i, doc := range docs {
		if doc.Data["title"] != want[i] {
			t.Errorf("docs[%d].title = %v, want %v", i, doc.Data["title"], want[i])
		}
	}
}

func TestMemoryStoreSubscribe(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	sub, err := s.Subscribe(ctx, "chores", []Filter{{Field: "status", Value: "active"}}, nil)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Stop()

	// initial snapshot replays the (empty) current set
	if docs := waitSnapshot(t, sub.Snapshots()); len(docs) != 0 {
		t.Fatalf("initial snapshot has %d docs, want 0", len(docs))
	}

	id, err := s.Create(ctx, "chores", map[string]any{"title": "Dishes", "status": "active"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if docs := waitSnapshot(t, sub.Snapshots()); len(docs) != 1 {
		t.Fatalf("snapshot after create has %d docs, want 1", len(docs))
	}

	// a doc that stops matching the filter falls out of the result set
	if err := s.Update(ctx, "chores", id, map[string]any{"status": "archived"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if docs := waitSnapshot(t, sub.Snapshots()); len(docs) != 0 {
		t.Fatalf("snapshot after archive has %d docs, want 0", len(docs))
	}
}

func TestMemoryStoreSubscribeStop(t *testing.T) {
	s := NewMemory()
	sub, err := s.Subscribe(context.Background(), "chores", nil, nil)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	waitSnapshot(t, sub.Snapshots())
	sub.Stop()

	select {
	case _, ok := <-sub.Snapshots():
		if ok {
			// a buffered snapshot may still drain; the channel must close after
			if _, ok := <-sub.Snapshots(); ok {
				t.Error("subscription channel still open after Stop")
			}
		}
	case <-time.After(2 * time.Second):
		t.Error("subscription channel not closed after Stop")
	}
}

func TestMemoryStoreTransaction(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	inviteID, err := s.Create(ctx, "familyInvites", map[string]any{"status": "pending"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	var memberID string
	err = s.RunTransaction(ctx, func(tx Tx) error {
		var err error
		memberID, err = tx.Create("familyMembers", map[string]any{"name": "Alice"})
		if err != nil {
			return err
		}
		return tx.Update("familyInvites", inviteID, map[string]any{"status": "accepted"})
	})
	if err != nil {
		t.Fatalf("RunTransaction() error = %v", err)
	}

	if _, err := s.Get(ctx, "familyMembers", memberID); err != nil {
		t.Errorf("member not created by transaction: %v", err)
	}
	doc, _ := s.Get(ctx, "familyInvites", inviteID)
	if doc.Data["status"] != "accepted" {
		t.Errorf("invite status = %v, want accepted", doc.Data["status"])
	}
}

func TestMemoryStoreTransactionRollback(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	boom := errors.New("boom")

	var memberID string
	err := s.RunTransaction(ctx, func(tx Tx) error {
		var err error
		memberID, err = tx.Create("familyMembers", map[string]any{"name": "Alice"})
		if err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("RunTransaction() error = %v, want boom", err)
	}

	if _, err := s.Get(ctx, "familyMembers", memberID); !errors.Is(err, ErrNotFound) {
		t.Errorf("member created despite failed transaction (err = %v)", err)
	}
}

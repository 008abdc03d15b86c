package session_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Paveld-cloud/imgbb-bot/internal/model/upload"
	"github.com/Paveld-cloud/imgbb-bot/internal/service/session"
)

func TestStorePutGet(t *testing.T) {
	store := session.NewStore()
	ctx := context.Background()

	put := store.Put(ctx, 42, []byte("jpeg bytes"))
	if put.ID == "" {
		t.Fatal("expected a generated session ID")
	}
	if put.UserID != 42 {
		t.Fatalf("unexpected user ID: got %d want 42", put.UserID)
	}

	got, err := store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if got.ID != put.ID {
		t.Fatalf("unexpected session ID: got %s want %s", got.ID, put.ID)
	}
	if !bytes.Equal(got.Image, []byte("jpeg bytes")) {
		t.Fatalf("unexpected image bytes: got %q", got.Image)
	}
}

func TestStoreGetNotFound(t *testing.T) {
	store := session.NewStore()

	if _, err := store.Get(context.Background(), 7); !errors.Is(err, session.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStoreLastWriteWins(t *testing.T) {
	store := session.NewStore()
	ctx := context.Background()

	first := store.Put(ctx, 42, []byte("first"))
	second := store.Put(ctx, 42, []byte("second"))
	if first.ID == second.ID {
		t.Fatal("expected a fresh session ID per put")
	}

	got, err := store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if !bytes.Equal(got.Image, []byte("second")) {
		t.Fatalf("expected the later photo to win, got %q", got.Image)
	}
}

func TestStorePutCopiesInput(t *testing.T) {
	store := session.NewStore()
	ctx := context.Background()

	image := []byte("original")
	store.Put(ctx, 42, image)
	image[0] = 'X'

	got, err := store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if !bytes.Equal(got.Image, []byte("original")) {
		t.Fatalf("stored bytes were mutated through the caller's slice: %q", got.Image)
	}
}

func TestStoreClearIdempotent(t *testing.T) {
	store := session.NewStore()
	ctx := context.Background()

	store.Put(ctx, 42, []byte("pending"))
	if !store.Clear(ctx, 42) {
		t.Fatal("expected first clear to drop the session")
	}
	if store.Clear(ctx, 42) {
		t.Fatal("expected second clear to be a no-op")
	}
	if state := store.State(ctx, 42); state != upload.StateIdle {
		t.Fatalf("unexpected state after clear: %s", state)
	}
}

func TestStoreClearIfMatchesID(t *testing.T) {
	store := session.NewStore()
	ctx := context.Background()

	stale := store.Put(ctx, 42, []byte("first"))
	fresh := store.Put(ctx, 42, []byte("second"))

	if store.ClearIf(ctx, 42, stale.ID) {
		t.Fatal("clear with a replaced session ID should be a no-op")
	}
	got, err := store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if got.ID != fresh.ID {
		t.Fatalf("replacement session was lost: got %s want %s", got.ID, fresh.ID)
	}

	if !store.ClearIf(ctx, 42, fresh.ID) {
		t.Fatal("expected the matching clear to drop the session")
	}
	if store.ClearIf(ctx, 42, fresh.ID) {
		t.Fatal("expected the repeated clear to be a no-op")
	}
	if state := store.State(ctx, 42); state != upload.StateIdle {
		t.Fatalf("unexpected state after clear: %s", state)
	}
}

func TestStoreStateDerivedFromPresence(t *testing.T) {
	store := session.NewStore()
	ctx := context.Background()

	if state := store.State(ctx, 42); state != upload.StateIdle {
		t.Fatalf("expected idle before put, got %s", state)
	}

	store.Put(ctx, 42, []byte("pending"))
	if state := store.State(ctx, 42); state != upload.StateAwaitingID {
		t.Fatalf("expected awaiting_id after put, got %s", state)
	}

	store.Clear(ctx, 42)
	if state := store.State(ctx, 42); state != upload.StateIdle {
		t.Fatalf("expected idle after clear, got %s", state)
	}
}

func TestStorePruneStale(t *testing.T) {
	store := session.NewStore()
	ctx := context.Background()

	store.Put(ctx, 1, []byte("a"))
	store.Put(ctx, 2, []byte("b"))

	if pruned := store.PruneStale(ctx, time.Hour); pruned != 0 {
		t.Fatalf("fresh sessions were pruned: %d", pruned)
	}
	if pruned := store.PruneStale(ctx, 0); pruned != 2 {
		t.Fatalf("expected both sessions pruned with zero ttl, got %d", pruned)
	}
	if state := store.State(ctx, 1); state != upload.StateIdle {
		t.Fatalf("expected idle after prune, got %s", state)
	}
}

func TestStoreJanitorPrunesAndStopsOnCancel(t *testing.T) {
	store := session.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store.Put(ctx, 1, []byte("abandoned"))

	done := make(chan struct{})
	go func() {
		store.RunJanitor(ctx, time.Nanosecond, time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		if _, err := store.Get(ctx, 1); errors.Is(err, session.ErrSessionNotFound) {
			break
		}
		select {
		case <-deadline:
			t.Fatal("janitor never pruned the stale session")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor kept running after cancellation")
	}
}

func TestStoreJanitorDisabledWithoutTTL(t *testing.T) {
	store := session.NewStore()

	done := make(chan struct{})
	go func() {
		store.RunJanitor(context.Background(), 0, time.Millisecond)
		store.RunJanitor(context.Background(), time.Minute, 0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor should return immediately when disabled")
	}
}

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func redisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, 0), mr
}

func TestRegistryCreateGetList(t *testing.T) {
	r := NewRegistry(nil, nil, testLogger())

	a := r.Create("first")
	b := r.Create("second")

	got, err := r.Get(a.ID)
	if err != nil || got != a {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if _, err := r.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get(missing) error = %v", err)
	}

	list := r.List()
	if len(list) != 2 {
		t.Fatalf("List() = %d sessions, want 2", len(list))
	}
	if list[0].CreatedAt.After(list[1].CreatedAt) {
		t.Error("List() not ordered by creation time")
	}
	if (list[0] != a || list[1] != b) && (list[0] != b || list[1] != a) {
		t.Errorf("List() = %v", list)
	}

	select {
	case <-a.OverlayReady():
	default:
		t.Error("new session overlay should be ready")
	}
}

func TestRegistryOpenRestoresFromStore(t *testing.T) {
	store, _ := redisStore(t)
	ctx := context.Background()

	src := populated(t)
	if err := store.SaveSnapshot(ctx, src.Snapshot()); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	r := NewRegistry(nil, store, testLogger())
	s, err := r.Open(ctx, "s1")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if len(s.Clips()) != 2 || s.Title() != "demo" {
		t.Errorf("restored session = %v / %q", s.Clips(), s.Title())
	}

	again, _ := r.Open(ctx, "s1")
	if again != s {
		t.Error("second Open should return the open session")
	}

	if _, err := r.Open(ctx, "unknown"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Open(unknown) error = %v", err)
	}
}

func TestRegistryCloseAndDelete(t *testing.T) {
	store, _ := redisStore(t)
	ctx := context.Background()
	r := NewRegistry(nil, store, testLogger())

	s := r.Create("x")
	if err := store.SaveSnapshot(ctx, s.Snapshot()); err != nil {
		t.Fatal(err)
	}

	if err := r.Close(s.ID); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if r.Len() != 0 {
		t.Fatal("closed session still open")
	}
	if _, err := r.Open(ctx, s.ID); err != nil {
		t.Fatalf("closed session should reopen from snapshot: %v", err)
	}

	if err := r.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := r.Open(ctx, s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("deleted session reopened: %v", err)
	}
	if err := r.Delete(ctx, s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestRegistryDeleteWithoutStore(t *testing.T) {
	r := NewRegistry(nil, nil, testLogger())
	s := r.Create("x")
	if err := r.Delete(context.Background(), s.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := r.Delete(context.Background(), s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Delete() error = %v", err)
	}
}

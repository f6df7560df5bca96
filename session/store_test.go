package session

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s, _ := newTestSession(t, &fakeBackend{}, nil)
	return NewStore(s.deps, ttl)
}

func TestStore_CreateAndGet(t *testing.T) {
	st := newTestStore(t, time.Hour)

	s := st.Create()
	if s.ID == "" {
		t.Fatal("expected a generated id")
	}
	got, ok := st.Get(s.ID)
	if !ok || got != s {
		t.Fatal("created session should be retrievable")
	}
	if _, ok := st.Get("missing"); ok {
		t.Fatal("unknown id should not resolve")
	}
	if other := st.Create(); other.ID == s.ID {
		t.Fatal("ids must be unique")
	}
	if st.Len() != 2 {
		t.Fatalf("len = %d", st.Len())
	}
}

func TestStore_EvictIdle(t *testing.T) {
	st := newTestStore(t, time.Minute)
	idle := st.Create()
	fresh := st.Create()

	idle.mu.Lock()
	idle.lastSeen = time.Now().Add(-2 * time.Minute)
	idle.mu.Unlock()

	if n := st.Evict(time.Now()); n != 1 {
		t.Fatalf("evicted %d, want 1", n)
	}
	if _, ok := st.Get(idle.ID); ok {
		t.Fatal("idle session should be gone")
	}
	if _, ok := st.Get(fresh.ID); !ok {
		t.Fatal("fresh session should survive")
	}
}

func TestStore_RunJanitorStopsOnCancel(t *testing.T) {
	st := newTestStore(t, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- st.RunJanitor(ctx, 5*time.Millisecond) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("janitor: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

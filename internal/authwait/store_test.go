package authwait

import (
	"testing"
	"time"
)

func TestStore_ParkAndTake(t *testing.T) {
	s := NewStore(0)

	s.Park("u1", "https://instagram.com/p/1")

	e, ok := s.Take("u1")
	if !ok {
		t.Fatal("Take should find the parked entry")
	}
	if e.URL != "https://instagram.com/p/1" {
		t.Errorf("URL = %q", e.URL)
	}

	if _, ok := s.Take("u1"); ok {
		t.Error("entry must be consumed by Take")
	}
}

func TestStore_NewerFailureReplacesOlder(t *testing.T) {
	s := NewStore(0)

	s.Park("u1", "https://a.com/1")
	s.Park("u1", "https://a.com/2")

	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	e, _ := s.Take("u1")
	if e.URL != "https://a.com/2" {
		t.Errorf("URL = %q, want the newer one", e.URL)
	}
}

func TestStore_Drain(t *testing.T) {
	s := NewStore(0)

	s.Park("u1", "https://a.com/1")
	s.Park("u2", "https://a.com/2")

	drained := s.Drain()
	if len(drained) != 2 {
		t.Fatalf("drained %d entries, want 2", len(drained))
	}
	if s.Len() != 0 {
		t.Error("store should be empty after drain")
	}
	if drained["u2"].URL != "https://a.com/2" {
		t.Errorf("drained entry wrong: %+v", drained["u2"])
	}
}

func TestStore_TTL(t *testing.T) {
	s := NewStore(time.Millisecond)

	s.Park("u1", "https://a.com/1")
	time.Sleep(5 * time.Millisecond)

	if _, ok := s.Take("u1"); ok {
		t.Error("expired entry should not be returned")
	}

	s.Park("u2", "https://a.com/2")
	time.Sleep(5 * time.Millisecond)
	s.Sweep()
	if s.Len() != 0 {
		t.Error("Sweep should drop expired entries")
	}
}

func TestStore_TakeMissing(t *testing.T) {
	s := NewStore(0)
	if _, ok := s.Take("nobody"); ok {
		t.Error("Take on empty store should report false")
	}
}

package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestCreateAndGet(t *testing.T) {
	s := New()

	if got := s.Get("chat-1"); got != nil {
		t.Fatalf("expected no draft for new session, got %+v", got)
	}

	d, err := s.Create("chat-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.SessionID != "chat-1" {
		t.Errorf("expected session id chat-1, got %q", d.SessionID)
	}
	if d.Status != StatusCollecting {
		t.Errorf("expected status collecting, got %q", d.Status)
	}
	if d.State != StateAwaitingContext {
		t.Errorf("expected state awaiting_context, got %q", d.State)
	}
	if d.Fields == nil || len(d.Fields) != 0 {
		t.Errorf("expected empty field map, got %v", d.Fields)
	}

	if got := s.Get("chat-1"); got != d {
		t.Error("Get should return the created draft")
	}
}

func TestCreate_DuplicateFails(t *testing.T) {
	s := New()
	if _, err := s.Create("chat-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Create("chat-1"); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestRemove_AllowsNewDraft(t *testing.T) {
	s := New()
	if _, err := s.Create("chat-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Remove("chat-1")

	if got := s.Get("chat-1"); got != nil {
		t.Fatal("expected draft to be gone after Remove")
	}
	if _, err := s.Create("chat-1"); err != nil {
		t.Errorf("expected Create to succeed after Remove, got %v", err)
	}

	// Removing an unknown session is a no-op.
	s.Remove("chat-unknown")
}

func TestActive(t *testing.T) {
	s := New()
	if s.Active() != 0 {
		t.Errorf("expected 0 active drafts, got %d", s.Active())
	}
	s.Create("a")
	s.Create("b")
	if s.Active() != 2 {
		t.Errorf("expected 2 active drafts, got %d", s.Active())
	}
	s.Remove("a")
	if s.Active() != 1 {
		t.Errorf("expected 1 active draft, got %d", s.Active())
	}
}

func TestConcurrentSessions(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("chat-%d", n)
			if _, err := s.Create(id); err != nil {
				t.Errorf("create %s: %v", id, err)
				return
			}
			if s.Get(id) == nil {
				t.Errorf("get %s: draft missing", id)
			}
			s.Remove(id)
		}(i)
	}
	wg.Wait()

	if s.Active() != 0 {
		t.Errorf("expected all drafts removed, got %d active", s.Active())
	}
}

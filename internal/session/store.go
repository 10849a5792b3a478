// Package session holds the in-progress draft for each active conversation.
// Drafts live only in process memory: one is created on the first message of
// a session and removed when the record completes or the user cancels.
package session

import (
	"errors"
	"sync"
)

// ErrAlreadyExists indicates a duplicate Create for a session that still has
// a non-terminal draft. This is a logic error in the caller, never a
// user-visible condition.
var ErrAlreadyExists = errors.New("draft already exists for session")

// Status is the lifecycle phase of a draft.
type Status string

const (
	StatusCollecting Status = "collecting"
	StatusComplete   Status = "complete"
	StatusCancelled  Status = "cancelled"
)

// DialogueState is the tagged conversation state. It is stored explicitly on
// the draft rather than inferred from which fields happen to be populated.
type DialogueState string

const (
	// StateAwaitingContext is the initial state: the next message is the
	// opening context statement and extraction runs without a hint.
	StateAwaitingContext DialogueState = "awaiting_context"
	// StateAwaitingMissing means at least one required field was still
	// empty after the last merge; extraction runs with the missing set as
	// a hint.
	StateAwaitingMissing DialogueState = "awaiting_missing"
)

// Draft is the mutable accumulator for one session. Only the engine mutates
// it, one inbound message at a time; the channel serializes delivery per
// session.
type Draft struct {
	SessionID    string
	Fields       map[string]string
	Status       Status
	State        DialogueState
	FirstMessage string // opening context statement, kept as the context fallback
}

// Store is a process-wide map from session id to draft.
type Store struct {
	mu     sync.Mutex
	drafts map[string]*Draft
}

func New() *Store {
	return &Store{drafts: make(map[string]*Draft)}
}

// Get returns the draft for id, or nil when the session has no open draft.
func (s *Store) Get(id string) *Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts[id]
}

// Create makes a fresh collecting draft for id. It fails with
// ErrAlreadyExists when a non-terminal draft is already present.
func (s *Store) Create(id string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.drafts[id]; ok && d.Status == StatusCollecting {
		return nil, ErrAlreadyExists
	}

	d := &Draft{
		SessionID: id,
		Fields:    make(map[string]string),
		Status:    StatusCollecting,
		State:     StateAwaitingContext,
	}
	s.drafts[id] = d
	return d, nil
}

// Remove drops the draft for id. Removing an absent session is a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
}

// Active returns the number of open drafts.
func (s *Store) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}

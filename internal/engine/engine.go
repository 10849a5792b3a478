// Package engine is the slot-filling state machine. Each inbound message
// runs one extraction pass, merges the result into the session's draft,
// and either prompts for whatever required fields are still missing or
// commits the completed record and clears the draft.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/rolodex/internal/dateparse"
	"github.com/MikeSquared-Agency/rolodex/internal/schema"
	"github.com/MikeSquared-Agency/rolodex/internal/session"
)

// SubjectRecorded is the bus subject announced for every committed record.
const SubjectRecorded = "swarm.rolodex.interaction.recorded"

// Extractor turns free text into a partial field map over the schema.
// A failed call means "zero fields this turn", never a fatal condition.
type Extractor interface {
	Extract(ctx context.Context, text string, missing []string) (map[string]string, error)
}

// Sender delivers an outbound message to a session's conversation.
type Sender interface {
	Send(ctx context.Context, sessionID, text string) error
}

// Sink appends one completed record to durable storage.
type Sink interface {
	Append(ctx context.Context, rec Record) error
}

// Publisher announces engine events on the bus. May be nil.
type Publisher interface {
	Publish(subject string, data any) error
}

type Engine struct {
	sessions  *session.Store
	extractor Extractor
	sender    Sender
	sink      Sink
	bus       Publisher
	logger    *slog.Logger
	now       func() time.Time

	// locks serializes turns per session so a remote cancel can never
	// interleave with a message mid-transition.
	locks sync.Map // sessionID -> *sync.Mutex
}

func New(sessions *session.Store, ext Extractor, sender Sender, sink Sink, bus Publisher, logger *slog.Logger) *Engine {
	return &Engine{
		sessions:  sessions,
		extractor: ext,
		sender:    sender,
		sink:      sink,
		bus:       bus,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock overrides the reference instant used for record ids and date
// normalization fallback.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

func (e *Engine) lock(sessionID string) *sync.Mutex {
	mu, _ := e.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// HandleMessage processes one inbound text message for a session.
func (e *Engine) HandleMessage(ctx context.Context, sessionID, text string) {
	mu := e.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	draft := e.sessions.Get(sessionID)
	first := draft == nil
	if first {
		var err error
		draft, err = e.sessions.Create(sessionID)
		if err != nil {
			// Duplicate concurrent creation for one session — a logic
			// error, not something the user can act on.
			e.logger.Error("draft creation failed", "session_id", sessionID, "error", err)
			return
		}
		draft.FirstMessage = text
		e.logger.Info("draft opened", "session_id", sessionID)
	}

	var hint []string
	if draft.State == session.StateAwaitingMissing {
		for _, f := range schema.MissingRequired(draft.Fields) {
			hint = append(hint, f.Name)
		}
	}

	result, err := e.extractor.Extract(ctx, text, hint)
	if err != nil {
		// Extraction failure never loses already-collected fields; the
		// turn proceeds as if nothing was found and the user is
		// re-prompted with the unchanged missing set.
		e.logger.Warn("extraction failed, treating as zero fields",
			"session_id", sessionID,
			"error", err,
		)
		result = nil
	}

	merged := 0
	for name, value := range result {
		value = strings.TrimSpace(value)
		if value == "" || !schema.Known(name) {
			continue
		}
		// Last write wins: a later correct answer supersedes an earlier
		// guess. Fields absent this turn keep their previous value.
		draft.Fields[name] = value
		merged++
	}

	missing := schema.MissingRequired(draft.Fields)
	e.logger.Info("turn processed",
		"session_id", sessionID,
		"merged", merged,
		"missing", len(missing),
	)

	if len(missing) > 0 {
		draft.State = session.StateAwaitingMissing
		e.send(ctx, sessionID, missingPrompt(missing, first))
		return
	}

	e.complete(ctx, draft)
}

// HandleCancel discards the session's draft, if any. No record is persisted.
func (e *Engine) HandleCancel(ctx context.Context, sessionID string) {
	mu := e.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	draft := e.sessions.Get(sessionID)
	if draft == nil {
		e.send(ctx, sessionID, "Nothing in progress to cancel.")
		return
	}

	draft.Status = session.StatusCancelled
	e.sessions.Remove(sessionID)
	e.logger.Info("draft cancelled", "session_id", sessionID)
	e.send(ctx, sessionID, "Cancelled — nothing was saved.")
}

// complete normalizes the date, commits the record, and clears the draft.
// Persistence failure is reported to the user distinctly from success but
// the draft is removed either way; this design does not retry the sink.
func (e *Engine) complete(ctx context.Context, draft *session.Draft) {
	now := e.now()

	when, err := dateparse.Normalize(draft.Fields[schema.FieldTimestamp], now)
	if err != nil {
		e.logger.Warn("date normalization failed, using reference date",
			"session_id", draft.SessionID,
			"expression", draft.Fields[schema.FieldTimestamp],
		)
		when = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	contextSummary := draft.Fields[schema.FieldContext]
	if contextSummary == "" {
		contextSummary = draft.FirstMessage
	}

	rec := Record{
		ID:          fmt.Sprintf("%s-%d", draft.SessionID, now.Unix()),
		Name:        draft.Fields[schema.FieldName],
		Context:     contextSummary,
		Date:        when.Format("2006-01-02"),
		ContactInfo: draft.Fields[schema.FieldContactInfo],
		Status:      RecordStatus,
	}

	draft.Status = session.StatusComplete
	e.sessions.Remove(draft.SessionID)

	if err := e.sink.Append(ctx, rec); err != nil {
		e.logger.Error("record append failed",
			"session_id", draft.SessionID,
			"record_id", rec.ID,
			"error", err,
		)
		e.send(ctx, draft.SessionID, "I had everything but couldn't save the record. It was not logged — please send the details again later.")
		return
	}

	e.logger.Info("record committed",
		"session_id", draft.SessionID,
		"record_id", rec.ID,
		"date", rec.Date,
	)
	e.send(ctx, draft.SessionID, fmt.Sprintf("Logged your interaction with %s on %s. ✅", rec.Name, rec.Date))

	if e.bus != nil {
		if err := e.bus.Publish(SubjectRecorded, map[string]any{
			"record_id":  rec.ID,
			"session_id": draft.SessionID,
			"name":       rec.Name,
			"date":       rec.Date,
		}); err != nil {
			e.logger.Warn("failed to publish record event", "error", err)
		}
	}
}

func (e *Engine) send(ctx context.Context, sessionID, text string) {
	if err := e.sender.Send(ctx, sessionID, text); err != nil {
		e.logger.Error("send failed", "session_id", sessionID, "error", err)
	}
}

// missingPrompt names the outstanding fields, joined conjunctively. The
// list is always the freshly recomputed missing set, never a cached one.
func missingPrompt(missing []schema.Field, first bool) string {
	labels := make([]string, len(missing))
	for i, f := range missing {
		labels[i] = f.Label
	}

	var joined string
	switch len(labels) {
	case 1:
		joined = labels[0]
	default:
		joined = strings.Join(labels[:len(labels)-1], ", ") + " and " + labels[len(labels)-1]
	}

	if first {
		return fmt.Sprintf("Got it! To log this I still need %s.", joined)
	}
	return fmt.Sprintf("Still missing %s.", joined)
}

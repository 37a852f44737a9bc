package bootstrap

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/rgblight/pkg/kv"
)

// DefaultKeepSessions is the number of sessions a Journal retains.
const DefaultKeepSessions = 20

const (
	journalRoot = "boot"
	// sessionTimeFormat sorts lexicographically in time order.
	sessionTimeFormat = "20060102T150405.000000000Z"
)

// Outcome of one attempt.
type Outcome string

const (
	OutcomeConnected Outcome = "connected"
	OutcomeTimedOut  Outcome = "timed_out"
	OutcomeFailed    Outcome = "failed"
)

func outcomeOf(ev Event) Outcome {
	switch ev {
	case EventLinkUp:
		return OutcomeConnected
	case EventAttemptTimedOut:
		return OutcomeTimedOut
	}
	return OutcomeFailed
}

// AttemptRecord is one journal entry.
type AttemptRecord struct {
	Session      string    `msgpack:"session" json:"session" yaml:"session"`
	SessionStart time.Time `msgpack:"session_start" json:"session_start" yaml:"session_start"`
	Attempt      int       `msgpack:"attempt" json:"attempt" yaml:"attempt"`
	StartedAt    time.Time `msgpack:"started_at" json:"started_at" yaml:"started_at"`
	FinishedAt   time.Time `msgpack:"finished_at" json:"finished_at" yaml:"finished_at"`
	Outcome      Outcome   `msgpack:"outcome" json:"outcome" yaml:"outcome"`
	Error        string    `msgpack:"error,omitempty" json:"error,omitempty" yaml:"error,omitempty"`
}

// Journal appends bootstrap attempts to a kv.Store under
//
//	boot/<session start>/<session id>/<attempt>
//
// and keeps only the newest sessions.
type Journal struct {
	store kv.Store
	keep  int
	now   func() time.Time

	mu      sync.Mutex
	session string
	start   time.Time
}

// NewJournal returns a journal keeping up to keep sessions.
func NewJournal(store kv.Store, keep int) *Journal {
	if keep <= 0 {
		keep = DefaultKeepSessions
	}
	return &Journal{store: store, keep: keep, now: time.Now}
}

// Begin starts a new session and drops sessions beyond the retention
// limit, counting the new one.
func (j *Journal) Begin(ctx context.Context) error {
	j.mu.Lock()
	j.session = uuid.NewString()
	j.start = j.now().UTC()
	j.mu.Unlock()
	return j.prune(ctx, j.keep-1)
}

// Session returns the current session id, or "" before Begin.
func (j *Journal) Session() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.session
}

// Record stores rec in the current session, starting one if needed.
func (j *Journal) Record(ctx context.Context, rec AttemptRecord) error {
	if j.Session() == "" {
		if err := j.Begin(ctx); err != nil {
			return err
		}
	}
	j.mu.Lock()
	rec.Session = j.session
	rec.SessionStart = j.start
	j.mu.Unlock()

	data, err := msgpack.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("bootstrap: encode attempt: %w", err)
	}
	if err := j.store.Set(ctx, recordKey(rec), data); err != nil {
		return fmt.Errorf("bootstrap: store attempt: %w", err)
	}
	return nil
}

// Records returns all journaled attempts, oldest session first.
func (j *Journal) Records(ctx context.Context) ([]AttemptRecord, error) {
	var recs []AttemptRecord
	for e, err := range j.store.List(ctx, kv.Key{journalRoot}) {
		if err != nil {
			return nil, fmt.Errorf("bootstrap: list journal: %w", err)
		}
		var rec AttemptRecord
		if err := msgpack.Unmarshal(e.Value, &rec); err != nil {
			return nil, fmt.Errorf("bootstrap: decode %s: %w", e.Key, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func recordKey(rec AttemptRecord) kv.Key {
	return kv.Key{
		journalRoot,
		rec.SessionStart.UTC().Format(sessionTimeFormat),
		rec.Session,
		fmt.Sprintf("%04d", rec.Attempt),
	}
}

// prune deletes all but the newest keep sessions.
func (j *Journal) prune(ctx context.Context, keep int) error {
	type session struct {
		id   string
		keys []kv.Key
	}
	var sessions []*session
	for e, err := range j.store.List(ctx, kv.Key{journalRoot}) {
		if err != nil {
			return fmt.Errorf("bootstrap: list journal: %w", err)
		}
		if len(e.Key) != 4 {
			continue
		}
		id := e.Key[1] + "/" + e.Key[2]
		if n := len(sessions); n == 0 || sessions[n-1].id != id {
			sessions = append(sessions, &session{id: id})
		}
		last := sessions[len(sessions)-1]
		last.keys = append(last.keys, slices.Clone(e.Key))
	}
	if len(sessions) <= keep {
		return nil
	}

	var stale []kv.Key
	for _, s := range sessions[:len(sessions)-keep] {
		stale = append(stale, s.keys...)
	}
	if err := j.store.BatchDelete(ctx, stale); err != nil {
		return fmt.Errorf("bootstrap: prune journal: %w", err)
	}
	return nil
}

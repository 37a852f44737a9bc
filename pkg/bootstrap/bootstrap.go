package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrBootstrapFailed is returned by Run when every attempt failed.
var ErrBootstrapFailed = errors.New("bootstrap: could not bring the link up")

// Defaults for Config.
const (
	DefaultAttemptTimeout = 15 * time.Second
	DefaultPollInterval   = time.Second
	DefaultMaxAttempts    = 5
)

// Link is a network connection that can be brought up.
type Link interface {
	// Connect starts connecting. It need not wait for the link to be up.
	Connect(ctx context.Context) error
	// Connected reports whether the link is up.
	Connected(ctx context.Context) (bool, error)
}

// Observer is notified of every phase change. It runs synchronously on the
// bootstrap goroutine.
type Observer interface {
	Transition(ctx context.Context, from, to Machine)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, from, to Machine)

func (f ObserverFunc) Transition(ctx context.Context, from, to Machine) {
	f(ctx, from, to)
}

// Config configures a Bootstrapper.
type Config struct {
	// AttemptTimeout bounds the wait for the link after each Connect.
	AttemptTimeout time.Duration
	// PollInterval is the time between Connected checks.
	PollInterval time.Duration
	// MaxAttempts is the number of Connect calls before giving up.
	MaxAttempts int

	// Journal, if set, records every attempt.
	Journal *Journal

	Logger *slog.Logger
}

func (c *Config) setDefaults() {
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = DefaultAttemptTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Bootstrapper runs the connection state machine over a Link.
type Bootstrapper struct {
	link      Link
	cfg       Config
	observers []Observer
}

// New returns a Bootstrapper for link.
func New(link Link, cfg Config) *Bootstrapper {
	cfg.setDefaults()
	return &Bootstrapper{link: link, cfg: cfg}
}

// Subscribe adds an observer. It must be called before Run.
func (b *Bootstrapper) Subscribe(o Observer) {
	b.observers = append(b.observers, o)
}

// Run attempts to bring the link up. It returns nil once the link is up,
// ErrBootstrapFailed after the last failed attempt, or the context error
// if ctx is done first.
func (b *Bootstrapper) Run(ctx context.Context) error {
	if b.cfg.Journal != nil {
		if err := b.cfg.Journal.Begin(ctx); err != nil {
			b.cfg.Logger.Warn("bootstrap: journal unavailable", "error", err)
		}
	}

	m := b.fire(ctx, NewMachine(b.cfg.MaxAttempts), EventStart)
	for !m.Phase.Terminal() {
		started := time.Now()
		ev, err := b.attempt(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		b.record(ctx, m.Attempt, started, ev, err)
		if ev != EventLinkUp {
			b.cfg.Logger.Warn("bootstrap: attempt failed",
				"attempt", m.Attempt,
				"max_attempts", m.MaxAttempts,
				"event", ev.String(),
				"error", err)
		}
		m = b.fire(ctx, m, ev)
	}

	if m.Phase == Failed {
		b.cfg.Logger.Error("bootstrap: giving up", "attempts", m.Attempt)
		return ErrBootstrapFailed
	}
	b.cfg.Logger.Info("bootstrap: link up", "attempt", m.Attempt)
	return nil
}

// attempt connects once and waits for the link. Checks happen right away
// and then once per poll interval until the attempt timeout is used up.
func (b *Bootstrapper) attempt(ctx context.Context) (Event, error) {
	if err := b.link.Connect(ctx); err != nil {
		return EventAttemptFailed, fmt.Errorf("bootstrap: connect: %w", err)
	}

	deadline := time.Now().Add(b.cfg.AttemptTimeout)
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return EventAttemptFailed, ctx.Err()
		case <-timer.C:
		}

		up, err := b.link.Connected(ctx)
		if err != nil {
			return EventAttemptFailed, fmt.Errorf("bootstrap: link status: %w", err)
		}
		if up {
			return EventLinkUp, nil
		}
		if !time.Now().Add(b.cfg.PollInterval).Before(deadline) {
			return EventAttemptTimedOut, nil
		}
		timer.Reset(b.cfg.PollInterval)
	}
}

func (b *Bootstrapper) fire(ctx context.Context, m Machine, ev Event) Machine {
	next := Transition(m, ev)
	if next == m {
		return next
	}
	b.cfg.Logger.Debug("bootstrap: transition", "from", m.String(), "to", next.String(), "event", ev.String())
	for _, o := range b.observers {
		o.Transition(ctx, m, next)
	}
	return next
}

func (b *Bootstrapper) record(ctx context.Context, attempt int, started time.Time, ev Event, err error) {
	if b.cfg.Journal == nil {
		return
	}
	rec := AttemptRecord{
		Attempt:    attempt,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Outcome:    outcomeOf(ev),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if jerr := b.cfg.Journal.Record(ctx, rec); jerr != nil {
		b.cfg.Logger.Warn("bootstrap: journal write failed", "error", jerr)
	}
}

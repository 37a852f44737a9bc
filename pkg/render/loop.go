// Package render periodically pushes the shared color to the LED driver.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/haivivi/rgblight/pkg/led"
	"github.com/haivivi/rgblight/pkg/light"
)

// DefaultPeriod is the polling period of a Loop.
const DefaultPeriod = 50 * time.Millisecond

// Loop polls a light.State and writes the composited color to a driver
// whenever it differs from what the driver currently shows. Other writers
// of the same driver, such as the HTTP handlers, are taken into account
// because the comparison is against Driver.Color rather than the loop's own
// writes.
type Loop struct {
	state  *light.State
	driver led.Driver
	period time.Duration
	logger *slog.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithPeriod sets the polling period.
func WithPeriod(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.period = d
		}
	}
}

// WithLogger sets the logger for skipped ticks.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoop returns a loop over state and driver.
func NewLoop(state *light.State, driver led.Driver, opts ...Option) *Loop {
	l := &Loop{
		state:  state,
		driver: driver,
		period: DefaultPeriod,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tick renders once. It reports whether the driver was written. A state
// that cannot be read is logged and skipped; a driver error is returned.
func (l *Loop) Tick() (bool, error) {
	wrote := false
	err := l.state.Read(func(c light.LogicalColor) error {
		p := light.Composite(c)
		if p == l.driver.Color() {
			return nil
		}
		if err := l.driver.SetColor(p); err != nil {
			return fmt.Errorf("render: write %v: %w", p, err)
		}
		wrote = true
		return nil
	})
	if errors.Is(err, light.ErrLockUnavailable) {
		l.logger.Warn("render: could not get read lock, tick skipped", "error", err)
		return false, nil
	}
	return wrote, err
}

// Last returns the color the driver currently shows.
func (l *Loop) Last() light.PhysicalColor {
	return l.driver.Color()
}

// Run ticks every period until ctx is done or the driver fails. It returns
// nil when ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := l.Tick(); err != nil {
				return err
			}
		}
	}
}

package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/haivivi/rgblight/pkg/led"
)

// DefaultSignalDuration is how long the outcome stays visible.
const DefaultSignalDuration = 2 * time.Second

// SignalTerminal returns an observer that shows the outcome of a bootstrap
// on ind for d, then clears it. Non-terminal transitions are ignored. The
// observer blocks for d, so the caller continues only after the signal.
func SignalTerminal(ind led.Indicator, d time.Duration, logger *slog.Logger) Observer {
	if d <= 0 {
		d = DefaultSignalDuration
	}
	if logger == nil {
		logger = slog.Default()
	}
	return ObserverFunc(func(ctx context.Context, from, to Machine) {
		if from.Phase.Terminal() || !to.Phase.Terminal() {
			return
		}
		s := led.SignalSuccess
		if to.Phase == Failed {
			s = led.SignalFailure
		}
		if err := ind.Show(s); err != nil {
			logger.Warn("bootstrap: status indicator", "signal", s.String(), "error", err)
			return
		}

		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
		case <-t.C:
		}
		t.Stop()

		if err := ind.Clear(); err != nil {
			logger.Warn("bootstrap: status indicator", "error", err)
		}
	})
}

package wire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"

	"github.com/haivivi/rgblight/pkg/light"
)

// ErrAlreadyServing is returned when Serve is called twice.
var ErrAlreadyServing = errors.New("wire: already serving")

// Config configures a Listener.
type Config struct {
	// BufferSize is the receive buffer size in bytes.
	// Default is MaxDatagramSize.
	BufferSize int

	// Logger receives per-segment faults and lock failures.
	// Default is slog.Default().
	Logger *slog.Logger
}

// Listener receives datagrams and applies them to a light.State. It never
// replies to the sender.
type Listener struct {
	conn    net.PacketConn
	state   *light.State
	bufSize int
	logger  *slog.Logger
	serving atomic.Bool
}

// Listen opens a UDP socket on addr.
func Listen(addr string, state *light.State, cfg Config) (*Listener, error) {
	if state == nil {
		return nil, errors.New("wire: nil state")
	}
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("wire: listen %s: %w", addr, err)
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = MaxDatagramSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Listener{
		conn:    conn,
		state:   state,
		bufSize: cfg.BufferSize,
		logger:  cfg.Logger,
	}, nil
}

// Addr returns the local address of the socket.
func (l *Listener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// Close closes the socket. A blocked Serve returns nil.
func (l *Listener) Close() error {
	return l.conn.Close()
}

// Serve receives datagrams until ctx is done or the socket is closed. It
// blocks on the socket without a read deadline; cancelling ctx closes the
// socket to release it.
func (l *Listener) Serve(ctx context.Context) error {
	if l.serving.Swap(true) {
		return ErrAlreadyServing
	}

	stop := context.AfterFunc(ctx, func() {
		l.conn.Close()
	})
	defer stop()

	buf := make([]byte, l.bufSize)
	for {
		n, from, err := l.conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("wire: read: %w", err)
		}
		if n == 0 {
			continue
		}
		l.handle(buf[:n], from)
	}
}

func (l *Listener) handle(payload []byte, from net.Addr) {
	r := Parse(payload)
	for _, f := range r.Faults() {
		l.logger.Warn("wire: dropped segment",
			"from", from,
			"fault", f.Kind.String(),
			"offset", f.Offset,
			"segment", string(f.Segment(payload)))
	}
	if extra := r.FaultCount() - len(r.Faults()); extra > 0 {
		l.logger.Warn("wire: more faults not shown", "from", from, "count", extra)
	}
	if r.Update.IsEmpty() {
		return
	}

	c, err := l.state.Apply(r.Update)
	if err != nil {
		l.logger.Error("wire: could not get write lock, datagram skipped", "from", from, "error", err)
		return
	}
	l.logger.Debug("wire: color updated", "from", from, "color", c.String())
}

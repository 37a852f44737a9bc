// Package api serves the HTTP control surface of the light.
//
// Routes (GET only):
//
//	/getRGBA   current color as "r,g,b,a"
//	/setRGBA   merge r, g, b, a query parameters into the color
//	/help      usage page
//	/health    liveness probe
//	/ws        websocket stream of color changes
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/haivivi/rgblight/pkg/led"
	"github.com/haivivi/rgblight/pkg/light"
)

// DefaultPollInterval is how often /ws checks the color for changes.
const DefaultPollInterval = 50 * time.Millisecond

// Config configures a Server.
type Config struct {
	// Driver receives the composited color after each /setRGBA. If nil the
	// color is only committed and left to the render loop.
	Driver led.Driver

	// OnFatal is called when the driver fails on /setRGBA. The process is
	// expected to stop.
	OnFatal func(error)

	// PollInterval is the /ws change polling interval.
	// Default is DefaultPollInterval.
	PollInterval time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Server handles the HTTP routes over a shared light.State.
type Server struct {
	state   *light.State
	driver  led.Driver
	onFatal func(error)
	poll    time.Duration
	logger  *slog.Logger

	router   *mux.Router
	upgrader websocket.Upgrader
}

// NewServer returns a handler for state.
func NewServer(state *light.State, cfg Config) *Server {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Server{
		state:   state,
		driver:  cfg.Driver,
		onFatal: cfg.OnFatal,
		poll:    cfg.PollInterval,
		logger:  cfg.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  256,
			WriteBufferSize: 256,
		},
	}

	r := mux.NewRouter()
	r.HandleFunc("/getRGBA", s.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/setRGBA", s.handleSet).Methods(http.MethodGet)
	r.HandleFunc("/help", s.handleHelp).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleStream).Methods(http.MethodGet)
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// TLSFiles names a certificate and key in PEM format. The server speaks
// plain HTTP unless both are set.
type TLSFiles struct {
	CertFile string
	KeyFile  string
}

func (t TLSFiles) enabled() bool {
	return t.CertFile != "" && t.KeyFile != ""
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string, tls TLSFiles) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("api: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln, tls)
}

// Serve serves on ln until ctx is done, then shuts down gracefully. It
// returns nil after a shutdown caused by ctx.
func (s *Server) Serve(ctx context.Context, ln net.Listener, tls TLSFiles) error {
	hs := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	shutdownDone := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(shutdownDone)
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(sctx); err != nil {
			s.logger.Warn("api: shutdown", "error", err)
		}
	})

	s.logger.Info("api: serving", "addr", ln.Addr().String(), "tls", tls.enabled())
	var err error
	if tls.enabled() {
		err = hs.ServeTLS(ln, tls.CertFile, tls.KeyFile)
	} else {
		err = hs.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		if !stop() {
			<-shutdownDone
		}
		return nil
	}
	stop()
	return fmt.Errorf("api: serve: %w", err)
}

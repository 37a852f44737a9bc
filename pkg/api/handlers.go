package api

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/haivivi/rgblight/pkg/light"
)

const helpPage = `<h1>Help - Supported functions</h1> ` +
	`<b>/help</b> - shows this help page</br> ` +
	`<b>/setRGBA?r=VALUE&g=VALUE&b=VALUE&a=VALUE</b> - sets the r,g,b and brightness/ alpha values</br> ` +
	`<b>/getRGBA</b> - gets the r,g,b and brightness/alpha values (in this order) as CSV without a CSV header</br> ` +
	`<b>/health</b> - liveness probe</br> ` +
	`<b>/ws</b> - websocket stream of r,g,b,a values, sent on connect and on every change</br>`

const (
	msgReadLock  = "could not get read lock"
	msgWriteLock = "could not get write lock"
	msgLEDWrite  = "could not write LED"
)

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, "I am alive")
}

func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, helpPage)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := s.state.Snapshot()
	if err != nil {
		s.logger.Error("api: getRGBA", "error", err)
		http.Error(w, msgReadLock, http.StatusBadRequest)
		return
	}
	writeText(w, c.String())
}

// ParseQuery turns a raw query string into a color update. It never fails:
// pairs are split on '&' and percent-decoded one by one, and a value that
// does not decode to a decimal number between 0 and 255 (an optional
// leading '+' is allowed) sets its channel to 0. Keys other than r, g, b, a
// are returned in unknown. When a key repeats, the last value wins.
func ParseQuery(raw string) (u light.Update, unknown []string) {
	for raw != "" {
		var pair string
		pair, raw, _ = strings.Cut(raw, "&")
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		ch, ok := light.ParseChannel(key)
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		u.Set(ch, parseValue(value))
	}
	return u, unknown
}

func parseValue(raw string) uint8 {
	s, err := url.QueryUnescape(raw)
	if err != nil {
		return 0
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	u, unknown := ParseQuery(r.URL.RawQuery)
	for _, key := range unknown {
		s.logger.Warn("api: setRGBA: unknown key", "key", key)
	}

	var driverErr error
	c, err := s.state.ApplyWith(u, func(c light.LogicalColor) error {
		if s.driver == nil {
			return nil
		}
		driverErr = s.driver.SetColor(light.Composite(c))
		return driverErr
	})
	switch {
	case err == nil:
	case driverErr != nil:
		s.logger.Error("api: setRGBA: led write failed", "error", driverErr)
		http.Error(w, msgLEDWrite, http.StatusInternalServerError)
		if s.onFatal != nil {
			s.onFatal(driverErr)
		}
		return
	default:
		s.logger.Error("api: setRGBA", "error", err)
		http.Error(w, msgWriteLock, http.StatusBadRequest)
		return
	}

	s.logger.Debug("api: color updated", "color", c.String())
	writeText(w, c.String())
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("api: websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	// Drain client frames so that close frames are noticed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	var (
		last    light.LogicalColor
		started bool
	)
	for {
		c, err := s.state.Snapshot()
		switch {
		case errors.Is(err, light.ErrLockUnavailable):
			s.logger.Warn("api: ws: could not get read lock", "error", err)
		case err != nil:
			return
		case !started || c != last:
			if err := conn.WriteMessage(websocket.TextMessage, c.AppendText(nil)); err != nil {
				return
			}
			last, started = c, true
		}

		select {
		case <-r.Context().Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(time.Second))
			return
		case <-closed:
			return
		case <-ticker.C:
		}
	}
}

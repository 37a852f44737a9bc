package lightclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/haivivi/rgblight/pkg/api"
	"github.com/haivivi/rgblight/pkg/light"
)

func newLight(t *testing.T) (*Client, *light.State) {
	t.Helper()
	state := light.NewState(light.DefaultColor)
	srv := api.NewServer(state, api.Config{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	c, err := New(ts.URL, ts.Client())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, state
}

func TestNew(t *testing.T) {
	c, err := New("10.0.0.7:8080", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.base.String() != "http://10.0.0.7:8080" {
		t.Errorf("base = %s", c.base)
	}
	if c.client != http.DefaultClient {
		t.Errorf("expected DefaultClient to be used")
	}
	if _, err := New("http://", nil); err == nil {
		t.Error("New without host should fail")
	}
}

func TestGetSet(t *testing.T) {
	c, state := newLight(t)
	ctx := context.Background()

	if err := c.Health(ctx); err != nil {
		t.Fatalf("Health: %v", err)
	}

	got, err := c.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != light.DefaultColor {
		t.Fatalf("Get = %v, want %v", got, light.DefaultColor)
	}

	var u light.Update
	u.Set(light.Red, 12)
	u.Set(light.Alpha, 34)
	got, err = c.Set(ctx, u)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	want := light.LogicalColor{R: 12, A: 34}
	if got != want {
		t.Fatalf("Set = %v, want %v", got, want)
	}
	if s, _ := state.Snapshot(); s != want {
		t.Fatalf("state = %v, want %v", s, want)
	}
}

func TestStatusError(t *testing.T) {
	c, state := newLight(t)
	state.Read(func(light.LogicalColor) error { panic("poison") })

	_, err := c.Get(context.Background())
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("Get = %v, want *StatusError", err)
	}
	if se.Code != http.StatusBadRequest || se.Body != "could not get read lock" {
		t.Fatalf("StatusError = %+v", se)
	}
}

func TestSend(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket: %v", err)
	}
	defer pc.Close()

	var u light.Update
	u.Set(light.Green, 200)
	u.Set(light.Blue, 7)
	if err := Send(context.Background(), pc.LocalAddr().String(), u); err != nil {
		t.Fatalf("Send: %v", err)
	}

	buf := make([]byte, 64)
	pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if got := string(buf[:n]); got != "g=200,b=7\n" {
		t.Fatalf("payload = %q", got)
	}

	if err := Send(context.Background(), pc.LocalAddr().String(), light.Update{}); err == nil {
		t.Fatal("Send with empty update should fail")
	}
}

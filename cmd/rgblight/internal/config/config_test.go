package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UDP.Addr != ":4210" || cfg.UDP.BufferSize != 24 {
		t.Fatalf("udp = %+v, want :4210/24", cfg.UDP)
	}
	if cfg.HTTP.Addr != ":80" {
		t.Fatalf("http.addr = %q, want :80", cfg.HTTP.Addr)
	}
	if cfg.Render.Period != 50*time.Millisecond {
		t.Fatalf("render.period = %v, want 50ms", cfg.Render.Period)
	}
	if cfg.Wifi.Timeout() != 15*time.Second || cfg.Wifi.ConnectionAttempts != 5 {
		t.Fatalf("wifi = %+v", cfg.Wifi)
	}
	if cfg.Status.Duration != 2*time.Second {
		t.Fatalf("status.duration = %v, want 2s", cfg.Status.Duration)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
wifi:
  link: command
  ssid: home
  passphrase: secret
  connection_attempts: 2
udp:
  addr: 127.0.0.1:5000
render:
  period: 20ms
pwm:
  backend: dry-run
status:
  backend: gpio
  success_line: 17
  failure_line: 27
  duration: 500ms
journal:
  dir: /var/lib/rgblight
log:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Wifi.Link != LinkCommand || cfg.Wifi.SSID != "home" || cfg.Wifi.ConnectionAttempts != 2 {
		t.Fatalf("wifi = %+v", cfg.Wifi)
	}
	// Untouched fields keep their defaults.
	if cfg.Wifi.TimeoutSeconds != 15 || cfg.Wifi.ConnectCommand == "" {
		t.Fatalf("wifi defaults lost: %+v", cfg.Wifi)
	}
	if cfg.UDP.Addr != "127.0.0.1:5000" || cfg.UDP.BufferSize != 24 {
		t.Fatalf("udp = %+v", cfg.UDP)
	}
	if cfg.Render.Period != 20*time.Millisecond {
		t.Fatalf("render.period = %v, want 20ms", cfg.Render.Period)
	}
	if cfg.Status.SuccessLine != 17 || cfg.Status.FailureLine != 27 || cfg.Status.Duration != 500*time.Millisecond {
		t.Fatalf("status = %+v", cfg.Status)
	}
	if cfg.Journal.Dir != "/var/lib/rgblight" || cfg.Journal.KeepSessions != 20 {
		t.Fatalf("journal = %+v", cfg.Journal)
	}
	lv, err := cfg.Log.SlogLevel()
	if err != nil || lv != slog.LevelDebug {
		t.Fatalf("SlogLevel() = %v, %v; want debug", lv, err)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown link", "wifi:\n  link: bluetooth\n", "unknown link"},
		{"zero attempts", "wifi:\n  connection_attempts: 0\n", "connection_attempts"},
		{"cert without key", "http:\n  cert_file: c.pem\n", "cert_file and key_file"},
		{"zero buffer", "udp:\n  buffer_size: 0\n", "buffer_size"},
		{"unknown pwm backend", "pwm:\n  backend: ws2812\n", "unknown backend"},
		{"missing pin", "pwm:\n  pins:\n    red: \"\"\n", "pins"},
		{"same status lines", "status:\n  backend: gpio\n", "must differ"},
		{"bad level", "log:\n  level: loud\n", "level"},
		{"bad yaml", "wifi: [", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("Load() error = nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error = %v", err)
	}
	if filepath.Base(path) != "config.yaml" || filepath.Base(filepath.Dir(path)) != "rgblight" {
		t.Fatalf("DefaultPath() = %q", path)
	}
}

// Package config loads the rgblight daemon configuration.
//
// The configuration is a single YAML file, by default under
// os.UserConfigDir():
//
//	~/Library/Application Support/rgblight/config.yaml   (macOS)
//	~/.config/rgblight/config.yaml                       (Linux)
//	%AppData%/rgblight/config.yaml                       (Windows)
//
// A missing file is not an error: every field has a default.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
)

const (
	// appDir is the directory name under os.UserConfigDir().
	appDir = "rgblight"

	// fileName is the configuration file inside appDir.
	fileName = "config.yaml"
)

// Link types for WifiConfig.Link.
const (
	LinkCommand   = "command"
	LinkInterface = "interface"
	LinkStatic    = "static"
)

// Backends for PWMConfig.Backend.
const (
	PWMPeriph = "periph"
	PWMDryRun = "dry-run"
)

// Backends for StatusConfig.Backend.
const (
	StatusPWM  = "pwm"
	StatusGPIO = "gpio"
	StatusNone = "none"
)

// Config is the root of config.yaml.
type Config struct {
	Wifi    WifiConfig    `yaml:"wifi" json:"wifi"`
	HTTP    HTTPConfig    `yaml:"http" json:"http"`
	UDP     UDPConfig     `yaml:"udp" json:"udp"`
	Render  RenderConfig  `yaml:"render" json:"render"`
	PWM     PWMConfig     `yaml:"pwm" json:"pwm"`
	Status  StatusConfig  `yaml:"status" json:"status"`
	Journal JournalConfig `yaml:"journal" json:"journal"`
	Log     LogConfig     `yaml:"log" json:"log"`
}

// WifiConfig configures the network bootstrap.
//
// ConnectCommand and StatusCommand are split into arguments like a shell
// would, then {ssid}, {passphrase} and {interface} are substituted inside
// each argument.
type WifiConfig struct {
	Link               string `yaml:"link" json:"link"`
	SSID               string `yaml:"ssid" json:"ssid"`
	Passphrase         string `yaml:"passphrase" json:"passphrase"`
	Interface          string `yaml:"interface" json:"interface"`
	ConnectCommand     string `yaml:"connect_command" json:"connect_command"`
	StatusCommand      string `yaml:"status_command" json:"status_command"`
	StatusExpect       string `yaml:"status_expect" json:"status_expect"`
	TimeoutSeconds     int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	ConnectionAttempts int    `yaml:"connection_attempts" json:"connection_attempts"`
}

// Timeout returns TimeoutSeconds as a duration.
func (w WifiConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutSeconds) * time.Second
}

// HTTPConfig configures the HTTP control surface. TLS is served when both
// CertFile and KeyFile are set.
type HTTPConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	CertFile string `yaml:"cert_file" json:"cert_file"`
	KeyFile  string `yaml:"key_file" json:"key_file"`
}

// UDPConfig configures the datagram listener.
type UDPConfig struct {
	Addr       string `yaml:"addr" json:"addr"`
	BufferSize int    `yaml:"buffer_size" json:"buffer_size"`
}

// RenderConfig configures the render loop.
type RenderConfig struct {
	Period time.Duration `yaml:"period" json:"period"`
}

// PWMConfig selects the LED output.
type PWMConfig struct {
	Backend     string    `yaml:"backend" json:"backend"`
	FrequencyHz int       `yaml:"frequency_hz" json:"frequency_hz"`
	Pins        PinConfig `yaml:"pins" json:"pins"`
}

// PinConfig names the PWM pins as known to periph's gpioreg.
type PinConfig struct {
	Red   string `yaml:"red" json:"red"`
	Green string `yaml:"green" json:"green"`
	Blue  string `yaml:"blue" json:"blue"`
}

// StatusConfig selects how the bootstrap outcome is shown.
//
// With backend pwm the outcome is shown on the light itself. With backend
// gpio, SuccessLine and FailureLine are line offsets on Chip.
type StatusConfig struct {
	Backend     string        `yaml:"backend" json:"backend"`
	Chip        string        `yaml:"chip" json:"chip"`
	SuccessLine int           `yaml:"success_line" json:"success_line"`
	FailureLine int           `yaml:"failure_line" json:"failure_line"`
	Duration    time.Duration `yaml:"duration" json:"duration"`
}

// JournalConfig configures the bootstrap journal. An empty Dir keeps the
// journal in memory.
type JournalConfig struct {
	Dir          string `yaml:"dir" json:"dir"`
	KeepSessions int    `yaml:"keep_sessions" json:"keep_sessions"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// SlogLevel parses Level. The empty string is info.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lv slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lv.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log: level: %w", err)
	}
	return lv, nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Wifi: WifiConfig{
			Link:               LinkStatic,
			Interface:          "wlan0",
			ConnectCommand:     "nmcli device wifi connect {ssid} password {passphrase} ifname {interface}",
			StatusCommand:      "nmcli -t -f GENERAL.STATE device show {interface}",
			StatusExpect:       "(connected)",
			TimeoutSeconds:     15,
			ConnectionAttempts: 5,
		},
		HTTP: HTTPConfig{Addr: ":80"},
		UDP:  UDPConfig{Addr: ":4210", BufferSize: 24},
		Render: RenderConfig{
			Period: 50 * time.Millisecond,
		},
		PWM: PWMConfig{
			Backend:     PWMPeriph,
			FrequencyHz: 1000,
			Pins:        PinConfig{Red: "GPIO12", Green: "GPIO13", Blue: "GPIO18"},
		},
		Status: StatusConfig{
			Backend:  StatusPWM,
			Chip:     "gpiochip0",
			Duration: 2 * time.Second,
		},
		Journal: JournalConfig{KeepSessions: 20},
		Log:     LogConfig{Level: "info"},
	}
}

// DefaultPath returns the default location of config.yaml.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load reads the configuration at path over the defaults. An empty path
// means DefaultPath. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch c.Wifi.Link {
	case LinkCommand:
		if c.Wifi.ConnectCommand == "" || c.Wifi.StatusCommand == "" {
			return errors.New("wifi: command link needs connect_command and status_command")
		}
	case LinkInterface:
		if c.Wifi.Interface == "" {
			return errors.New("wifi: interface link needs interface")
		}
	case LinkStatic:
	default:
		return fmt.Errorf("wifi: unknown link %q", c.Wifi.Link)
	}
	if c.Wifi.TimeoutSeconds <= 0 {
		return errors.New("wifi: timeout_seconds must be positive")
	}
	if c.Wifi.ConnectionAttempts <= 0 {
		return errors.New("wifi: connection_attempts must be positive")
	}
	if (c.HTTP.CertFile == "") != (c.HTTP.KeyFile == "") {
		return errors.New("http: cert_file and key_file must be set together")
	}
	if c.UDP.BufferSize <= 0 {
		return errors.New("udp: buffer_size must be positive")
	}
	if c.Render.Period <= 0 {
		return errors.New("render: period must be positive")
	}
	switch c.PWM.Backend {
	case PWMPeriph:
		if c.PWM.Pins.Red == "" || c.PWM.Pins.Green == "" || c.PWM.Pins.Blue == "" {
			return errors.New("pwm: pins.red, pins.green and pins.blue are required")
		}
		if c.PWM.FrequencyHz <= 0 {
			return errors.New("pwm: frequency_hz must be positive")
		}
	case PWMDryRun:
	default:
		return fmt.Errorf("pwm: unknown backend %q", c.PWM.Backend)
	}
	switch c.Status.Backend {
	case StatusPWM, StatusNone:
	case StatusGPIO:
		if c.Status.Chip == "" {
			return errors.New("status: gpio backend needs chip")
		}
		if c.Status.SuccessLine == c.Status.FailureLine {
			return errors.New("status: success_line and failure_line must differ")
		}
	default:
		return fmt.Errorf("status: unknown backend %q", c.Status.Backend)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

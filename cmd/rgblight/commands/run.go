package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/physic"

	"github.com/haivivi/rgblight/cmd/rgblight/internal/config"
	"github.com/haivivi/rgblight/pkg/api"
	"github.com/haivivi/rgblight/pkg/bootstrap"
	"github.com/haivivi/rgblight/pkg/kv"
	"github.com/haivivi/rgblight/pkg/led"
	"github.com/haivivi/rgblight/pkg/light"
	"github.com/haivivi/rgblight/pkg/render"
	"github.com/haivivi/rgblight/pkg/wire"
)

var runDryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the light",
	Long: `Run the light daemon.

The network is brought up first. The outcome is shown on the status
indicator; if every attempt fails the daemon exits with an error. Once
connected, the HTTP server, the UDP listener and the render loop run until
SIGINT or SIGTERM, or until the LED can no longer be written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if runDryRun {
			cfg.PWM.Backend = config.PWMDryRun
		}
		logger, err := newLogger(cfg.Log, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		slog.SetDefault(logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runDaemon(ctx, cfg, logger)
	},
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "log LED writes instead of driving PWM pins")
	rootCmd.AddCommand(runCmd)
}

// driverCloser is an LED driver that owns hardware.
type driverCloser interface {
	led.Driver
	Close() error
}

func runDaemon(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	driver, err := openDriver(cfg.PWM, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := driver.SetOff(); err != nil {
			logger.Warn("run: turn LED off", "error", err)
		}
		if err := driver.Close(); err != nil {
			logger.Warn("run: close LED", "error", err)
		}
	}()

	ind, closeInd, err := openIndicator(cfg.Status, driver)
	if err != nil {
		return err
	}
	defer closeInd()

	if err := connect(ctx, cfg, ind, logger); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return serve(ctx, cfg, driver, logger)
}

// connect runs the network bootstrap and shows its outcome on ind.
func connect(ctx context.Context, cfg *config.Config, ind led.Indicator, logger *slog.Logger) error {
	link, err := newLink(cfg.Wifi)
	if err != nil {
		return err
	}
	store, err := kv.Open(cfg.Journal.Dir, logger)
	if err != nil {
		return fmt.Errorf("run: open journal: %w", err)
	}
	defer store.Close()

	b := bootstrap.New(link, bootstrap.Config{
		AttemptTimeout: cfg.Wifi.Timeout(),
		MaxAttempts:    cfg.Wifi.ConnectionAttempts,
		Journal:        bootstrap.NewJournal(store, cfg.Journal.KeepSessions),
		Logger:         logger,
	})
	b.Subscribe(bootstrap.SignalTerminal(ind, cfg.Status.Duration, logger))
	return b.Run(ctx)
}

// serve runs the HTTP server, the UDP listener and the render loop until
// ctx is done or one of them fails.
func serve(ctx context.Context, cfg *config.Config, driver led.Driver, logger *slog.Logger) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	state := light.NewState(light.DefaultColor)

	ln, err := wire.Listen(cfg.UDP.Addr, state, wire.Config{
		BufferSize: cfg.UDP.BufferSize,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer ln.Close()

	srv := api.NewServer(state, api.Config{
		Driver:  driver,
		OnFatal: func(err error) { cancel(fmt.Errorf("http: %w", err)) },
		Logger:  logger,
	})
	tls := api.TLSFiles{CertFile: cfg.HTTP.CertFile, KeyFile: cfg.HTTP.KeyFile}

	loop := render.NewLoop(state, driver,
		render.WithPeriod(cfg.Render.Period),
		render.WithLogger(logger),
	)

	var wg sync.WaitGroup
	start := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				cancel(fmt.Errorf("%s: %w", name, err))
			}
		}()
	}
	start("udp", ln.Serve)
	start("http", func(ctx context.Context) error {
		return srv.ListenAndServe(ctx, cfg.HTTP.Addr, tls)
	})
	start("render", loop.Run)

	logger.Info("run: light is up", "http", cfg.HTTP.Addr, "udp", ln.Addr().String())
	<-ctx.Done()
	wg.Wait()

	cause := context.Cause(ctx)
	if errors.Is(cause, context.Canceled) {
		logger.Info("run: stopped")
		return nil
	}
	logger.Error("run: fatal", "error", cause)
	return cause
}

func openDriver(c config.PWMConfig, logger *slog.Logger) (driverCloser, error) {
	switch c.Backend {
	case config.PWMDryRun:
		return led.NewDryRun(logger), nil
	case config.PWMPeriph:
		freq := physic.Frequency(c.FrequencyHz) * physic.Hertz
		d, err := led.OpenPWMRGB(c.Pins.Red, c.Pins.Green, c.Pins.Blue, freq)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, fmt.Errorf("run: unknown pwm backend %q", c.Backend)
}

func openIndicator(c config.StatusConfig, driver led.Driver) (led.Indicator, func() error, error) {
	nop := func() error { return nil }
	switch c.Backend {
	case config.StatusPWM:
		return led.ColorIndicator{Driver: driver}, nop, nil
	case config.StatusGPIO:
		ind, err := led.OpenLineIndicator(c.Chip, c.SuccessLine, c.FailureLine)
		if err != nil {
			return nil, nil, err
		}
		return ind, ind.Close, nil
	case config.StatusNone:
		return led.NopIndicator{}, nop, nil
	}
	return nil, nil, fmt.Errorf("run: unknown status backend %q", c.Backend)
}

func newLink(c config.WifiConfig) (bootstrap.Link, error) {
	switch c.Link {
	case config.LinkCommand:
		link, err := bootstrap.NewCommandLink(c.ConnectCommand, c.StatusCommand, c.StatusExpect, bootstrap.Credentials{
			SSID:       c.SSID,
			Passphrase: c.Passphrase,
			Interface:  c.Interface,
		})
		if err != nil {
			return nil, err
		}
		return link, nil
	case config.LinkInterface:
		return bootstrap.InterfaceLink{Name: c.Interface}, nil
	case config.LinkStatic:
		return bootstrap.StaticLink{}, nil
	}
	return nil, fmt.Errorf("run: unknown wifi link %q", c.Link)
}

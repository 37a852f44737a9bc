package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/haivivi/rgblight/cmd/rgblight/internal/config"
	"github.com/haivivi/rgblight/pkg/cli"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Global configuration (loaded on first use)
	globalConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "rgblight",
	Short: "Network-controlled RGB light",
	Long: `rgblight - drive an RGB LED from HTTP queries and UDP datagrams.

The daemon ('rgblight run') brings the network up, then serves:
  HTTP  /getRGBA, /setRGBA?r=&g=&b=&a=, /help, /health, /ws
  UDP   datagrams such as "r=255,g=0,b=40,a=128"

The other commands are clients for a running light.

Configuration is read from the OS config directory unless --config is set:
  macOS:   ~/Library/Application Support/rgblight/config.yaml
  Linux:   ~/.config/rgblight/config.yaml
  Windows: %AppData%/rgblight/config.yaml

Examples:
  # Run with a software LED
  rgblight run

  # Half brightness orange
  rgblight set --addr 10.0.0.7 --hex ff8000 --a 128

  # Same over UDP
  rgblight send --udp 10.0.0.7:4210 r=255,g=128,b=0,a=128`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is the OS config directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// GetConfig returns the configuration, loading it on first use.
func GetConfig() (*config.Config, error) {
	if globalConfig == nil {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

// newLogger returns a text logger on w at the configured level, or at
// debug when --verbose is set.
func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// addOutputFlag registers -o on cmd.
func addOutputFlag(cmd *cobra.Command, target *string, usage string) {
	cmd.Flags().StringVarP(target, "output", "o", "", usage)
}

func printer(cmd *cobra.Command, format string) (cli.Printer, error) {
	f, err := cli.ParseFormat(format)
	if err != nil {
		return cli.Printer{}, err
	}
	return cli.Printer{Format: f, W: cmd.OutOrStdout()}, nil
}

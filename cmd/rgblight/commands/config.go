package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/rgblight/cmd/rgblight/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
}

var configShowOutput string

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the configuration after defaults are applied",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		p, err := printer(cmd, configShowOutput)
		if err != nil {
			return err
		}
		shown := *cfg
		if shown.Wifi.Passphrase != "" {
			shown.Wifi.Passphrase = "********"
		}
		return p.Print(shown)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the path of the configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			p, err := config.DefaultPath()
			if err != nil {
				return err
			}
			path = p
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	addOutputFlag(configShowCmd, &configShowOutput, "output format (yaml, json)")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

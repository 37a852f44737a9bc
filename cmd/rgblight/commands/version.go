package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/rgblight/cmd/rgblight/internal/build"
	"github.com/haivivi/rgblight/cmd/rgblight/internal/config"
)

var versionOutput string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionOutput != "" {
			p, err := printer(cmd, versionOutput)
			if err != nil {
				return err
			}
			return p.Print(build.Current())
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, build.String())
		if IsVerbose() {
			info := build.Current()
			fmt.Fprintf(out, "  go:     %s\n", info.Go)
			path := configPath
			if path == "" {
				if p, err := config.DefaultPath(); err == nil {
					path = p
				} else {
					path = fmt.Sprintf("(unavailable: %v)", err)
				}
			}
			fmt.Fprintf(out, "  config: %s\n", path)
		}
		return nil
	},
}

func init() {
	addOutputFlag(versionCmd, &versionOutput, "output format (yaml, json)")
	rootCmd.AddCommand(versionCmd)
}

package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/rgblight/pkg/bootstrap"
	"github.com/haivivi/rgblight/pkg/kv"
)

var (
	bootlogDir    string
	bootlogOutput string
)

var bootlogCmd = &cobra.Command{
	Use:   "bootlog",
	Short: "Show the recorded network bootstrap attempts",
	Long: `Show the network bootstrap attempts recorded by 'rgblight run', oldest
first. Only the most recent journal.keep_sessions runs are kept.

The journal must live on disk (journal.dir). A running daemon holds the
journal open, so stop it first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := bootlogDir
		if dir == "" {
			cfg, err := GetConfig()
			if err != nil {
				return err
			}
			dir = cfg.Journal.Dir
		}
		if dir == "" {
			return errors.New("journal.dir is not set; the journal is only kept in memory")
		}
		p, err := printer(cmd, bootlogOutput)
		if err != nil {
			return err
		}

		store, err := kv.Open(dir, nil)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer store.Close()

		recs, err := bootstrap.NewJournal(store, 0).Records(cmd.Context())
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "no bootstrap attempts recorded")
			return nil
		}
		return p.Print(recs)
	},
}

func init() {
	bootlogCmd.Flags().StringVar(&bootlogDir, "dir", "", "journal directory (default is journal.dir from the config)")
	addOutputFlag(bootlogCmd, &bootlogOutput, "output format (yaml, json)")
	rootCmd.AddCommand(bootlogCmd)
}

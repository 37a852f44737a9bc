package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/haivivi/rgblight/pkg/cli"
	"github.com/haivivi/rgblight/pkg/light"
)

var errNoChannels = errors.New("no channel given (use --r, --g, --b, --a or --hex)")

// channelFlags collect a light.Update from --r --g --b --a and --hex.
// Explicit channel flags win over --hex.
type channelFlags struct {
	values [4]uint8
	hex    string
}

func (f *channelFlags) register(cmd *cobra.Command) {
	for i, ch := range light.Channels {
		cmd.Flags().Uint8Var(&f.values[i], ch.String(), 0, "value of channel "+ch.String()+" (0-255)")
	}
	cmd.Flags().StringVar(&f.hex, "hex", "", "red, green and blue as #rrggbb")
}

func (f *channelFlags) update(cmd *cobra.Command) (light.Update, error) {
	var u light.Update
	if f.hex != "" {
		h, err := cli.ParseHex(f.hex)
		if err != nil {
			return light.Update{}, err
		}
		u = h
	}
	for i, ch := range light.Channels {
		if cmd.Flags().Changed(ch.String()) {
			u.Set(ch, f.values[i])
		}
	}
	if u.IsEmpty() {
		return light.Update{}, errNoChannels
	}
	return u, nil
}

var (
	setFlags    clientFlags
	setChannels channelFlags
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the color of a running light over HTTP",
	Long: `Change the color of a running light over HTTP.

Only the given channels change. The light answers with the color it
committed, which is printed.`,
	Example: `  rgblight set --addr 10.0.0.7 --r 255 --g 0 --b 40
  rgblight set --addr 10.0.0.7 --hex "#ff8000" --a 128`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := setChannels.update(cmd)
		if err != nil {
			return err
		}
		c, err := setFlags.client()
		if err != nil {
			return err
		}
		col, err := c.Set(cmd.Context(), u)
		if err != nil {
			return err
		}
		return printColor(cmd, setFlags.output, col)
	},
}

func init() {
	setFlags.register(setCmd)
	setChannels.register(setCmd)
	rootCmd.AddCommand(setCmd)
}

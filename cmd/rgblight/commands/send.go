package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/rgblight/pkg/lightclient"
	"github.com/haivivi/rgblight/pkg/wire"
)

var (
	sendAddr     string
	sendChannels channelFlags
)

var sendCmd = &cobra.Command{
	Use:   "send [payload]",
	Short: "Change the color of a running light over UDP",
	Long: `Send one datagram to a running light.

The payload is either given as an argument in wire form
("r=255,g=0,b=40,a=128") or built from the channel flags. The light does
not reply. Malformed segments are rejected here rather than sent.`,
	Example: `  rgblight send --udp 10.0.0.7:4210 r=255,b=40
  rgblight send --udp 10.0.0.7:4210 --hex 00ff88 --a 64`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if sendAddr == "" {
			return errors.New("--udp is required")
		}
		var payload string
		if len(args) == 1 {
			payload = args[0]
		}
		res := wire.Parse([]byte(payload))
		if faults := res.Faults(); len(faults) > 0 {
			var segs []string
			for _, f := range faults {
				segs = append(segs, fmt.Sprintf("%q (%s)", f.Segment([]byte(payload)), f.Kind))
			}
			return fmt.Errorf("malformed payload: %s", strings.Join(segs, ", "))
		}
		u := res.Update
		if len(args) == 0 {
			var err error
			if u, err = sendChannels.update(cmd); err != nil {
				return err
			}
		}
		if err := lightclient.Send(cmd.Context(), sendAddr, u); err != nil {
			return err
		}
		if IsVerbose() {
			fmt.Fprintf(cmd.ErrOrStderr(), "sent %s to %s\n", wire.AppendUpdate(nil, u), sendAddr)
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendAddr, "udp", "", "light UDP address (host:port)")
	sendChannels.register(sendCmd)
	rootCmd.AddCommand(sendCmd)
}

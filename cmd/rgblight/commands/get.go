package commands

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/rgblight/pkg/cli"
	"github.com/haivivi/rgblight/pkg/light"
	"github.com/haivivi/rgblight/pkg/lightclient"
)

// clientFlags are shared by the HTTP client commands.
type clientFlags struct {
	addr    string
	timeout time.Duration
	output  string
}

func (f *clientFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.addr, "addr", "localhost", "light address (host[:port] or URL)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 5*time.Second, "request timeout")
	addOutputFlag(cmd, &f.output, "output format (yaml, json); default is a color swatch")
}

func (f *clientFlags) client() (*lightclient.Client, error) {
	return lightclient.New(f.addr, &http.Client{Timeout: f.timeout})
}

// colorView is the structured output of get and set.
type colorView struct {
	R   uint8  `json:"r" yaml:"r"`
	G   uint8  `json:"g" yaml:"g"`
	B   uint8  `json:"b" yaml:"b"`
	A   uint8  `json:"a" yaml:"a"`
	Hex string `json:"hex" yaml:"hex"`
}

func printColor(cmd *cobra.Command, format string, c light.LogicalColor) error {
	if format == "" {
		fmt.Fprintln(cmd.OutOrStdout(), cli.Swatch(c))
		return nil
	}
	p, err := printer(cmd, format)
	if err != nil {
		return err
	}
	return p.Print(colorView{R: c.R, G: c.G, B: c.B, A: c.A, Hex: cli.Hex(c)})
}

var getFlags clientFlags

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Read the color of a running light",
	Example: `  rgblight get --addr 10.0.0.7
  rgblight get --addr 10.0.0.7 -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getFlags.client()
		if err != nil {
			return err
		}
		col, err := c.Get(cmd.Context())
		if err != nil {
			return err
		}
		return printColor(cmd, getFlags.output, col)
	},
}

func init() {
	getFlags.register(getCmd)
	rootCmd.AddCommand(getCmd)
}

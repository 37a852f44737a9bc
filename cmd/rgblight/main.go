// Package main is the entry point for the rgblight daemon and its client.
//
// Usage:
//
//	rgblight [flags] <command> [args]
//
// Commands:
//
//	run      - Bring the network up and serve the light (HTTP, UDP, render loop)
//	get      - Read the color of a running light
//	set      - Change the color of a running light over HTTP
//	send     - Change the color of a running light over UDP
//	bootlog  - Show the recorded network bootstrap attempts
//	config   - Show the effective configuration
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/rgblight/cmd/rgblight/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

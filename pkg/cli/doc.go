// Package cli holds terminal helpers shared by the rgblight commands:
// structured output in YAML, JSON or raw form, and color swatches.
//
// Example:
//
//	p := cli.Printer{Format: cli.FormatJSON, W: os.Stdout}
//	p.Print(records)
//
//	fmt.Println(cli.Swatch(color))
package cli

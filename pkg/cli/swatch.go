package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/haivivi/rgblight/pkg/light"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
)

// Hex returns the composited color as "#rrggbb".
func Hex(c light.LogicalColor) string {
	p := light.Composite(c)
	return colorful.Color{
		R: float64(p.R) / 255,
		G: float64(p.G) / 255,
		B: float64(p.B) / 255,
	}.Hex()
}

// Swatch renders a block filled with the composited color followed by the
// logical values, for example
//
//	██████  255,128,0,255  #ff8000
func Swatch(c light.LogicalColor) string {
	hex := Hex(c)
	block := lipgloss.NewStyle().
		Background(lipgloss.Color(hex)).
		Render(strings.Repeat(" ", 6))
	return block + "  " + labelStyle.Render(c.String()) + "  " + dimStyle.Render(hex)
}

// ParseHex parses "#rrggbb", "rrggbb" or "#rgb" into an update of the
// r, g and b channels. Alpha is left alone.
func ParseHex(s string) (light.Update, error) {
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	col, err := colorful.Hex(s)
	if err != nil {
		return light.Update{}, fmt.Errorf("cli: parse color %q: %w", s, err)
	}
	r, g, b := col.RGB255()
	var u light.Update
	u.Set(light.Red, r)
	u.Set(light.Green, g)
	u.Set(light.Blue, b)
	return u, nil
}

// Package light provides the color model of an RGB light and the shared
// color state that network ingestors write and the render loop reads.
package light

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrBadColor is returned by ParseColor.
var ErrBadColor = errors.New("light: malformed color")

// LogicalColor is the user-facing color of the light. A is a brightness
// multiplier applied when rendering, not a transparency channel.
type LogicalColor struct {
	R, G, B, A uint8
}

// DefaultColor is the color at startup: black at full brightness.
var DefaultColor = LogicalColor{A: 255}

// String returns the color as "r,g,b,a" in decimal.
func (c LogicalColor) String() string {
	var buf [15]byte
	return string(c.AppendText(buf[:0]))
}

// AppendText appends "r,g,b,a" to b.
func (c LogicalColor) AppendText(b []byte) []byte {
	b = strconv.AppendUint(b, uint64(c.R), 10)
	b = append(b, ',')
	b = strconv.AppendUint(b, uint64(c.G), 10)
	b = append(b, ',')
	b = strconv.AppendUint(b, uint64(c.B), 10)
	b = append(b, ',')
	return strconv.AppendUint(b, uint64(c.A), 10)
}

// ParseColor parses the "r,g,b,a" form produced by String.
func ParseColor(s string) (LogicalColor, error) {
	var c LogicalColor
	fields := strings.Split(strings.TrimSpace(s), ",")
	if len(fields) != len(Channels) {
		return c, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	var u Update
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 8)
		if err != nil {
			return c, fmt.Errorf("%w: %q", ErrBadColor, s)
		}
		u.Set(Channels[i], uint8(v))
	}
	return u.ApplyTo(c), nil
}

// Get returns the value of a channel.
func (c LogicalColor) Get(ch Channel) uint8 {
	switch ch {
	case Red:
		return c.R
	case Green:
		return c.G
	case Blue:
		return c.B
	case Alpha:
		return c.A
	}
	return 0
}

// PhysicalColor is the RGB triple written to the output channels.
type PhysicalColor struct {
	R, G, B uint8
}

// Off is the physical color with all outputs at zero duty.
var Off = PhysicalColor{}

func (c PhysicalColor) String() string {
	var buf [11]byte
	b := strconv.AppendUint(buf[:0], uint64(c.R), 10)
	b = append(b, ',')
	b = strconv.AppendUint(b, uint64(c.G), 10)
	b = append(b, ',')
	b = strconv.AppendUint(b, uint64(c.B), 10)
	return string(b)
}

// Composite scales the color channels by the alpha channel and returns the
// values to drive the hardware with: round(channel * a / 255).
func Composite(c LogicalColor) PhysicalColor {
	relative := float64(c.A) / 255.0
	return PhysicalColor{
		R: scale(c.R, relative),
		G: scale(c.G, relative),
		B: scale(c.B, relative),
	}
}

func scale(v uint8, relative float64) uint8 {
	return uint8(math.Round(float64(v) * relative))
}

// Package led drives the three output channels of an RGB light.
//
// The render loop and the HTTP handlers only see the Driver interface. RGB
// implements it over three independent Channel outputs; the periph backend
// turns each channel into a hardware PWM pin and the Recorder backend keeps
// the writes in memory for dry runs and tests.
package led

import (
	"errors"
	"fmt"
	"sync"

	"github.com/haivivi/rgblight/pkg/light"
)

// ErrClosed is returned when writing to a closed driver.
var ErrClosed = errors.New("led: driver closed")

// Driver is the capability the rest of the program needs from the light.
type Driver interface {
	// SetColor drives the outputs to c.
	SetColor(c light.PhysicalColor) error
	// SetOff drives all outputs to zero.
	SetOff() error
	// Color returns the color the outputs were last driven to.
	Color() light.PhysicalColor
}

// Channel is one output with an 8-bit duty cycle, 0 is off and 255 is
// always on.
type Channel interface {
	SetDuty(v uint8) error
}

// RGB is a Driver over three channels. Writes are serialized, and a
// SetColor issues exactly one SetDuty per channel.
type RGB struct {
	mu               sync.Mutex
	red, green, blue Channel
	closers          []func() error
	closed           bool

	// color is what the channels hold after the last complete SetColor.
	// The outputs are assumed off before the first write.
	color light.PhysicalColor
}

// NewRGB returns a driver writing to the given channels. Channels that
// implement an io.Closer-like Close() error are closed by Close.
func NewRGB(red, green, blue Channel) *RGB {
	d := &RGB{red: red, green: green, blue: blue}
	for _, ch := range []Channel{red, green, blue} {
		if c, ok := ch.(interface{ Close() error }); ok {
			d.closers = append(d.closers, c.Close)
		}
	}
	return d
}

// SetColor implements Driver.
func (d *RGB) SetColor(c light.PhysicalColor) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if err := d.red.SetDuty(c.R); err != nil {
		return fmt.Errorf("led: set red: %w", err)
	}
	if err := d.green.SetDuty(c.G); err != nil {
		return fmt.Errorf("led: set green: %w", err)
	}
	if err := d.blue.SetDuty(c.B); err != nil {
		return fmt.Errorf("led: set blue: %w", err)
	}
	d.color = c
	return nil
}

// Color implements Driver.
func (d *RGB) Color() light.PhysicalColor {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.color
}

// SetOff implements Driver.
func (d *RGB) SetOff() error {
	return d.SetColor(light.Off)
}

// Close releases the channels. Later writes return ErrClosed.
func (d *RGB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	var errs []error
	for _, c := range d.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package led

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/haivivi/rgblight/pkg/light"
)

// Signal is a status shown on an Indicator.
type Signal int

const (
	SignalSuccess Signal = iota + 1
	SignalFailure
)

func (s Signal) String() string {
	switch s {
	case SignalSuccess:
		return "success"
	case SignalFailure:
		return "failure"
	}
	return fmt.Sprintf("Signal(%d)", int(s))
}

// Indicator shows a status signal, for example the outcome of the network
// bootstrap.
type Indicator interface {
	Show(s Signal) error
	Clear() error
}

// Status colors are dim so that they do not dazzle at close range.
var (
	SuccessColor = light.PhysicalColor{G: 10}
	FailureColor = light.PhysicalColor{R: 10}
)

// ColorIndicator shows signals on a Driver.
type ColorIndicator struct {
	Driver Driver
}

// Show implements Indicator.
func (c ColorIndicator) Show(s Signal) error {
	switch s {
	case SignalSuccess:
		return c.Driver.SetColor(SuccessColor)
	case SignalFailure:
		return c.Driver.SetColor(FailureColor)
	}
	return fmt.Errorf("led: unknown signal %v", s)
}

// Clear implements Indicator.
func (c ColorIndicator) Clear() error {
	return c.Driver.SetOff()
}

// NopIndicator ignores all signals.
type NopIndicator struct{}

func (NopIndicator) Show(Signal) error { return nil }
func (NopIndicator) Clear() error      { return nil }

// Line is a digital output, satisfied by *gpiocdev.Line.
type Line interface {
	SetValue(v int) error
	Close() error
}

// LineIndicator shows signals on two digital outputs, one lit for success
// and one for failure.
type LineIndicator struct {
	success Line
	failure Line
}

// NewLineIndicator returns an indicator over two lines.
func NewLineIndicator(success, failure Line) *LineIndicator {
	return &LineIndicator{success: success, failure: failure}
}

// OpenLineIndicator requests two output lines on a GPIO character device,
// for example chip "gpiochip0".
func OpenLineIndicator(chip string, successOffset, failureOffset int) (*LineIndicator, error) {
	success, err := gpiocdev.RequestLine(chip, successOffset, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("rgblight"))
	if err != nil {
		return nil, fmt.Errorf("led: request line %s:%d: %w", chip, successOffset, err)
	}
	failure, err := gpiocdev.RequestLine(chip, failureOffset, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("rgblight"))
	if err != nil {
		success.Close()
		return nil, fmt.Errorf("led: request line %s:%d: %w", chip, failureOffset, err)
	}
	return NewLineIndicator(success, failure), nil
}

// Show implements Indicator.
func (l *LineIndicator) Show(s Signal) error {
	var on, off Line
	switch s {
	case SignalSuccess:
		on, off = l.success, l.failure
	case SignalFailure:
		on, off = l.failure, l.success
	default:
		return fmt.Errorf("led: unknown signal %v", s)
	}
	if err := off.SetValue(0); err != nil {
		return err
	}
	return on.SetValue(1)
}

// Clear implements Indicator.
func (l *LineIndicator) Clear() error {
	return errors.Join(l.success.SetValue(0), l.failure.SetValue(0))
}

// Close releases both lines.
func (l *LineIndicator) Close() error {
	return errors.Join(l.success.Close(), l.failure.Close())
}

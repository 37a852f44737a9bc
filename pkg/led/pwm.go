package led

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// DefaultFrequency is the PWM frequency used when none is configured.
const DefaultFrequency = 1000 * physic.Hertz

var (
	hostOnce sync.Once
	hostErr  error
)

func initHost() error {
	hostOnce.Do(func() {
		_, hostErr = host.Init()
	})
	return hostErr
}

// PWMChannel drives one periph.io pin in PWM mode.
type PWMChannel struct {
	pin  gpio.PinIO
	freq physic.Frequency
}

// OpenPWM looks up a pin by name (for example "GPIO18" or "PWM0") after
// initializing the host drivers.
func OpenPWM(name string, freq physic.Frequency) (*PWMChannel, error) {
	if err := initHost(); err != nil {
		return nil, fmt.Errorf("led: init host: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("led: pin %q not found", name)
	}
	if freq <= 0 {
		freq = DefaultFrequency
	}
	return &PWMChannel{pin: pin, freq: freq}, nil
}

// SetDuty implements Channel.
func (p *PWMChannel) SetDuty(v uint8) error {
	if err := p.pin.PWM(dutyFor(v), p.freq); err != nil {
		return fmt.Errorf("led: pwm %s: %w", p.pin.Name(), err)
	}
	return nil
}

// Close stops the PWM output and drives the pin low.
func (p *PWMChannel) Close() error {
	if err := p.pin.Halt(); err != nil {
		return err
	}
	return p.pin.Out(gpio.Low)
}

func (p *PWMChannel) String() string {
	return p.pin.Name()
}

func dutyFor(v uint8) gpio.Duty {
	return gpio.Duty(int64(v) * int64(gpio.DutyMax) / 255)
}

// OpenPWMRGB opens three PWM pins and returns a driver over them.
func OpenPWMRGB(red, green, blue string, freq physic.Frequency) (*RGB, error) {
	var chans [3]*PWMChannel
	for i, name := range []string{red, green, blue} {
		ch, err := OpenPWM(name, freq)
		if err != nil {
			for _, opened := range chans[:i] {
				opened.Close()
			}
			return nil, err
		}
		chans[i] = ch
	}
	return NewRGB(chans[0], chans[1], chans[2]), nil
}

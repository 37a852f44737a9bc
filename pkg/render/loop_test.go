package render

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/haivivi/rgblight/pkg/led"
	"github.com/haivivi/rgblight/pkg/light"
)

var quiet = WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

func set(t *testing.T, s *light.State, c light.LogicalColor) {
	t.Helper()
	if _, err := s.Apply(light.UpdateFrom(c)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
}

func TestTickDebounce(t *testing.T) {
	state := light.NewState(light.DefaultColor)
	d := led.NewDryRun(nil)
	loop := NewLoop(state, d, quiet)

	// Black at startup matches the outputs, which start off.
	if wrote, err := loop.Tick(); err != nil || wrote {
		t.Fatalf("Tick() = %v, %v; want false, nil", wrote, err)
	}
	if n := len(d.Journal.Writes()); n != 0 {
		t.Fatalf("writes = %d, want 0", n)
	}

	set(t, state, light.LogicalColor{R: 200, G: 100, B: 50, A: 255})
	if wrote, err := loop.Tick(); err != nil || !wrote {
		t.Fatalf("Tick() = %v, %v; want true, nil", wrote, err)
	}
	if n := len(d.Journal.Writes()); n != 3 {
		t.Fatalf("writes = %d, want one per channel", n)
	}

	d.Journal.Reset()
	if wrote, _ := loop.Tick(); wrote {
		t.Fatal("unchanged color must not be written")
	}
	if n := len(d.Journal.Writes()); n != 0 {
		t.Fatalf("writes = %d, want 0", n)
	}
}

func TestTickComposites(t *testing.T) {
	state := light.NewState(light.LogicalColor{R: 255, G: 100, B: 1, A: 128})
	d := led.NewDryRun(nil)
	loop := NewLoop(state, d, quiet)

	if _, err := loop.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	want := light.PhysicalColor{R: 128, G: 50, B: 1}
	if loop.Last() != want {
		t.Fatalf("Last() = %v, want %v", loop.Last(), want)
	}
	if d.Red.Duty() != 128 || d.Green.Duty() != 50 || d.Blue.Duty() != 1 {
		t.Fatalf("duty = %d,%d,%d", d.Red.Duty(), d.Green.Duty(), d.Blue.Duty())
	}
}

// Changing the logical color without changing its composite, for example
// at zero brightness, must not write.
func TestTickSameComposite(t *testing.T) {
	state := light.NewState(light.LogicalColor{R: 10, A: 0})
	d := led.NewDryRun(nil)
	loop := NewLoop(state, d, quiet)

	set(t, state, light.LogicalColor{R: 99, G: 99, A: 0})
	if wrote, _ := loop.Tick(); wrote {
		t.Fatal("black composite must not be written")
	}
}

func TestTickSkipsPoisoned(t *testing.T) {
	state := light.NewState(light.LogicalColor{R: 1, A: 255})
	d := led.NewDryRun(nil)
	loop := NewLoop(state, d, quiet)

	state.Read(func(light.LogicalColor) error { panic("poison") })
	wrote, err := loop.Tick()
	if err != nil || wrote {
		t.Fatalf("Tick() = %v, %v; want false, nil", wrote, err)
	}

	state.ClearPoison()
	if wrote, err := loop.Tick(); err != nil || !wrote {
		t.Fatalf("Tick() after ClearPoison = %v, %v; want true, nil", wrote, err)
	}
}

func TestTickSeesOtherWriters(t *testing.T) {
	state := light.NewState(light.DefaultColor)
	d := led.NewDryRun(nil)
	loop := NewLoop(state, d, quiet)

	red := light.LogicalColor{R: 200, A: 255}
	set(t, state, red)
	if wrote, err := loop.Tick(); err != nil || !wrote {
		t.Fatalf("Tick() = %v, %v; want true, nil", wrote, err)
	}

	// Another writer drives blue straight to the hardware, then the state
	// returns to the color the loop rendered before.
	blue := light.LogicalColor{B: 200, A: 255}
	if _, err := state.ApplyWith(light.UpdateFrom(blue), func(c light.LogicalColor) error {
		return d.SetColor(light.Composite(c))
	}); err != nil {
		t.Fatalf("ApplyWith: %v", err)
	}
	set(t, state, red)

	if wrote, err := loop.Tick(); err != nil || !wrote {
		t.Fatalf("Tick() = %v, %v; want true, nil", wrote, err)
	}
	if got, want := d.Color(), light.Composite(red); got != want {
		t.Fatalf("hardware = %v, want %v", got, want)
	}
}

func TestTickDriverFailure(t *testing.T) {
	state := light.NewState(light.LogicalColor{R: 1, A: 255})
	d := led.NewDryRun(nil)
	d.Red.Err = errors.New("pwm gone")
	loop := NewLoop(state, d, quiet)

	if _, err := loop.Tick(); !errors.Is(err, d.Red.Err) {
		t.Fatalf("Tick() = %v, want pwm gone", err)
	}
	if loop.Last() != light.Off {
		t.Fatal("failed write must not change the driver color")
	}
}

func TestRun(t *testing.T) {
	state := light.NewState(light.DefaultColor)
	d := led.NewDryRun(nil)
	loop := NewLoop(state, d, quiet, WithPeriod(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	set(t, state, light.LogicalColor{B: 42, A: 255})
	deadline := time.Now().Add(2 * time.Second)
	for d.Blue.Duty() != 42 {
		if time.Now().After(deadline) {
			t.Fatal("render loop did not write the new color")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
}

func TestRunStopsOnDriverFailure(t *testing.T) {
	state := light.NewState(light.LogicalColor{G: 5, A: 255})
	d := led.NewDryRun(nil)
	d.Red.Err = errors.New("pwm gone")
	loop := NewLoop(state, d, quiet, WithPeriod(time.Millisecond))

	select {
	case err := <-runAsync(loop):
		if !errors.Is(err, d.Red.Err) {
			t.Fatalf("Run() = %v, want pwm gone", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func runAsync(loop *Loop) <-chan error {
	done := make(chan error, 1)
	go func() { done <- loop.Run(context.Background()) }()
	return done
}

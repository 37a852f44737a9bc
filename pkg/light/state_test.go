package light

import (
	"errors"
	"sync"
	"testing"
)

func TestStateApplyAndSnapshot(t *testing.T) {
	s := NewState(DefaultColor)

	got, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if got != DefaultColor {
		t.Fatalf("Snapshot = %v, want %v", got, DefaultColor)
	}

	var u Update
	u.Set(Green, 42)
	committed, err := s.Apply(u)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := LogicalColor{G: 42, A: 255}
	if committed != want {
		t.Fatalf("Apply = %v, want %v", committed, want)
	}
	if got, _ := s.Snapshot(); got != want {
		t.Fatalf("Snapshot after Apply = %v, want %v", got, want)
	}
}

func TestStateApplyWithKeepsCommitOnError(t *testing.T) {
	s := NewState(DefaultColor)
	var u Update
	u.Set(Red, 7)

	wantErr := errors.New("driver down")
	var seen LogicalColor
	c, err := s.ApplyWith(u, func(c LogicalColor) error {
		seen = c
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("ApplyWith err = %v, want %v", err, wantErr)
	}
	if c.R != 7 || seen.R != 7 {
		t.Fatalf("ApplyWith committed %v, fn saw %v", c, seen)
	}
	if s.Poisoned() {
		t.Fatal("an ordinary error must not poison the state")
	}
}

func TestStatePoisoning(t *testing.T) {
	s := NewState(LogicalColor{R: 1, G: 2, B: 3, A: 4})
	var u Update
	u.Set(Red, 200)

	_, err := s.ApplyWith(u, func(LogicalColor) error {
		panic("hardware exploded")
	})
	if !errors.Is(err, ErrLockUnavailable) {
		t.Fatalf("ApplyWith after panic err = %v, want ErrLockUnavailable", err)
	}
	if !s.Poisoned() {
		t.Fatal("state should be poisoned")
	}
	if _, err := s.Snapshot(); !errors.Is(err, ErrLockUnavailable) {
		t.Fatalf("Snapshot on poisoned state err = %v", err)
	}
	if _, err := s.Apply(u); !errors.Is(err, ErrLockUnavailable) {
		t.Fatalf("Apply on poisoned state err = %v", err)
	}

	s.ClearPoison()
	got, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot after ClearPoison: %v", err)
	}
	if want := (LogicalColor{R: 1, G: 2, B: 3, A: 4}); got != want {
		t.Fatalf("failed update leaked: got %v, want %v", got, want)
	}
}

func TestStateReadPanicPoisons(t *testing.T) {
	s := NewState(DefaultColor)
	err := s.Read(func(LogicalColor) error { panic("boom") })
	if !errors.Is(err, ErrLockUnavailable) {
		t.Fatalf("Read err = %v, want ErrLockUnavailable", err)
	}
	if !s.Poisoned() {
		t.Fatal("state should be poisoned")
	}
}

// Writers updating distinct fields concurrently must never produce a value
// that nobody wrote, and the last write to each field must win.
func TestStateConcurrentWriters(t *testing.T) {
	s := NewState(LogicalColor{})
	const rounds = 500

	var wg sync.WaitGroup
	for i, ch := range Channels {
		wg.Add(1)
		go func(ch Channel, base uint8) {
			defer wg.Done()
			for n := 0; n < rounds; n++ {
				var u Update
				u.Set(ch, base+uint8(n%10))
				if _, err := s.Apply(u); err != nil {
					t.Errorf("Apply: %v", err)
					return
				}
			}
		}(ch, uint8(i*50))
	}

	stop := make(chan struct{})
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			select {
			case <-stop:
				return
			default:
			}
			c, err := s.Snapshot()
			if err != nil {
				t.Errorf("Snapshot: %v", err)
				return
			}
			for i, ch := range Channels {
				v := c.Get(ch)
				if v == 0 {
					continue
				}
				base := uint8(i * 50)
				if v < base || v >= base+10 {
					t.Errorf("channel %v = %d, never written", ch, v)
					return
				}
			}
		}
	}()

	wg.Wait()
	close(stop)
	<-readerDone

	got, _ := s.Snapshot()
	want := LogicalColor{R: 9, G: 59, B: 109, A: 159}
	if got != want {
		t.Fatalf("final color = %v, want %v", got, want)
	}
}

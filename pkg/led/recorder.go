package led

import (
	"log/slog"
	"sync"
)

// Write is one SetDuty call seen by a Recorder.
type Write struct {
	Channel string
	Duty    uint8
}

// Recorder is an in-memory Channel for dry runs and tests. Several
// recorders may share one Journal to observe the order of writes across
// channels.
type Recorder struct {
	Name string

	// Err, when set, is returned by SetDuty instead of recording.
	Err error

	// Logger, when set, logs each write at debug level.
	Logger *slog.Logger

	journal *Journal
	mu      sync.Mutex
	duty    uint8
}

// SetDuty implements Channel.
func (r *Recorder) SetDuty(v uint8) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	r.duty = v
	if r.journal != nil {
		r.journal.add(Write{Channel: r.Name, Duty: v})
	}
	if r.Logger != nil {
		r.Logger.Debug("led: duty", "channel", r.Name, "duty", v)
	}
	return nil
}

// Duty returns the last written duty cycle.
func (r *Recorder) Duty() uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.duty
}

// Journal collects writes from several recorders.
type Journal struct {
	mu     sync.Mutex
	writes []Write
}

func (j *Journal) add(w Write) {
	j.mu.Lock()
	j.writes = append(j.writes, w)
	j.mu.Unlock()
}

// Writes returns a copy of the recorded writes.
func (j *Journal) Writes() []Write {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Write(nil), j.writes...)
}

// Reset drops all recorded writes.
func (j *Journal) Reset() {
	j.mu.Lock()
	j.writes = nil
	j.mu.Unlock()
}

// DryRun is an RGB driver over three recorders sharing one journal.
type DryRun struct {
	*RGB
	Red, Green, Blue *Recorder
	Journal          *Journal
}

// NewDryRun returns a driver that records instead of touching hardware.
// logger may be nil.
func NewDryRun(logger *slog.Logger) *DryRun {
	j := &Journal{}
	d := &DryRun{
		Red:     &Recorder{Name: "red", Logger: logger, journal: j},
		Green:   &Recorder{Name: "green", Logger: logger, journal: j},
		Blue:    &Recorder{Name: "blue", Logger: logger, journal: j},
		Journal: j,
	}
	d.RGB = NewRGB(d.Red, d.Green, d.Blue)
	return d
}

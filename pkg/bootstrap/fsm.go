// Package bootstrap brings the network link up before the light starts
// serving. It retries a bounded number of times and reports the outcome to
// observers such as a status indicator.
package bootstrap

import "fmt"

// Phase is the state of a bootstrap.
type Phase int

const (
	Idle Phase = iota
	Connecting
	Connected
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Terminal reports whether p is Connected or Failed.
func (p Phase) Terminal() bool {
	return p == Connected || p == Failed
}

// Event drives a Machine.
type Event int

const (
	EventStart Event = iota + 1
	EventLinkUp
	EventAttemptTimedOut
	EventAttemptFailed
)

func (e Event) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventLinkUp:
		return "link up"
	case EventAttemptTimedOut:
		return "attempt timed out"
	case EventAttemptFailed:
		return "attempt failed"
	}
	return fmt.Sprintf("Event(%d)", int(e))
}

// Machine is the bootstrap state. Attempt counts from 1 while Connecting
// and keeps the last attempt number in terminal phases.
type Machine struct {
	Phase       Phase
	Attempt     int
	MaxAttempts int
}

// NewMachine returns an Idle machine allowing max attempts. max is at
// least 1.
func NewMachine(max int) Machine {
	if max < 1 {
		max = 1
	}
	return Machine{Phase: Idle, MaxAttempts: max}
}

func (m Machine) String() string {
	if m.Phase == Idle {
		return m.Phase.String()
	}
	return fmt.Sprintf("%s (%d/%d)", m.Phase, m.Attempt, m.MaxAttempts)
}

// Transition returns the machine after e. Terminal machines are returned
// unchanged, as are events that do not apply to the current phase.
func Transition(m Machine, e Event) Machine {
	switch m.Phase {
	case Idle:
		if e == EventStart {
			m.Phase = Connecting
			m.Attempt = 1
		}
	case Connecting:
		switch e {
		case EventLinkUp:
			m.Phase = Connected
		case EventAttemptTimedOut, EventAttemptFailed:
			if m.Attempt >= m.MaxAttempts {
				m.Phase = Failed
			} else {
				m.Attempt++
			}
		}
	}
	return m
}

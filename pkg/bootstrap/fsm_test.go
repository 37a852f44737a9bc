package bootstrap

import "testing"

func TestTransition(t *testing.T) {
	tests := []struct {
		name string
		from Machine
		ev   Event
		want Machine
	}{
		{"start", Machine{Idle, 0, 3}, EventStart, Machine{Connecting, 1, 3}},
		{"idle ignores link up", Machine{Idle, 0, 3}, EventLinkUp, Machine{Idle, 0, 3}},
		{"link up", Machine{Connecting, 2, 3}, EventLinkUp, Machine{Connected, 2, 3}},
		{"timeout retries", Machine{Connecting, 1, 3}, EventAttemptTimedOut, Machine{Connecting, 2, 3}},
		{"failure retries", Machine{Connecting, 2, 3}, EventAttemptFailed, Machine{Connecting, 3, 3}},
		{"last attempt fails", Machine{Connecting, 3, 3}, EventAttemptFailed, Machine{Failed, 3, 3}},
		{"last attempt times out", Machine{Connecting, 3, 3}, EventAttemptTimedOut, Machine{Failed, 3, 3}},
		{"connecting ignores start", Machine{Connecting, 1, 3}, EventStart, Machine{Connecting, 1, 3}},
		{"connected absorbs", Machine{Connected, 1, 3}, EventAttemptFailed, Machine{Connected, 1, 3}},
		{"failed absorbs", Machine{Failed, 3, 3}, EventLinkUp, Machine{Failed, 3, 3}},
		{"failed ignores start", Machine{Failed, 3, 3}, EventStart, Machine{Failed, 3, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Transition(tt.from, tt.ev); got != tt.want {
				t.Fatalf("Transition(%v, %v) = %v, want %v", tt.from, tt.ev, got, tt.want)
			}
		})
	}
}

func TestNewMachine(t *testing.T) {
	m := NewMachine(0)
	if m.MaxAttempts != 1 || m.Phase != Idle {
		t.Fatalf("NewMachine(0) = %+v", m)
	}
	m = Transition(m, EventStart)
	m = Transition(m, EventAttemptTimedOut)
	if m.Phase != Failed {
		t.Fatalf("single attempt machine = %v, want failed", m)
	}
}

func TestPhaseTerminal(t *testing.T) {
	for p, want := range map[Phase]bool{Idle: false, Connecting: false, Connected: true, Failed: true} {
		if p.Terminal() != want {
			t.Errorf("%v.Terminal() = %v, want %v", p, p.Terminal(), want)
		}
	}
}

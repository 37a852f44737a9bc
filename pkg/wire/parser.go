// Package wire implements the UDP text protocol of the light.
//
// A datagram carries one or more segments of the form
//
//	channel=value
//
// separated by ',' or '\n', where channel is one of r, g, b, a and value is
// a decimal number between 0 and 255. Segments are handled independently: a
// malformed segment is recorded as a Fault and the next segment is still
// applied.
package wire

import (
	"strconv"

	"github.com/haivivi/rgblight/pkg/light"
)

// MaxDatagramSize is the default receive buffer size. Longer datagrams are
// truncated by the socket.
const MaxDatagramSize = 24

// MaxFaults is the number of faults a Result records. Further faults are
// only counted.
const MaxFaults = 12

// FaultKind classifies a rejected segment.
type FaultKind uint8

const (
	// FaultMissingSeparator means the segment has no '='.
	FaultMissingSeparator FaultKind = iota + 1
	// FaultUnknownChannel means the token before '=' is not r, g, b or a.
	FaultUnknownChannel
	// FaultBadValue means the value is empty, not decimal, or above 255.
	FaultBadValue
)

func (k FaultKind) String() string {
	switch k {
	case FaultMissingSeparator:
		return "missing separator"
	case FaultUnknownChannel:
		return "unknown channel"
	case FaultBadValue:
		return "bad value"
	}
	return "unknown fault"
}

// Fault locates a rejected segment inside the datagram.
type Fault struct {
	Kind   FaultKind
	Offset int
	Len    int
}

// Segment returns the bytes of the rejected segment within payload.
func (f Fault) Segment(payload []byte) []byte {
	end := f.Offset + f.Len
	if f.Offset < 0 || end > len(payload) {
		return nil
	}
	return payload[f.Offset:end]
}

// Result is the outcome of parsing one datagram.
type Result struct {
	// Update holds every accepted segment, later segments overriding
	// earlier ones for the same channel.
	Update light.Update

	faults  [MaxFaults]Fault
	nfaults int
	dropped int
}

// Faults returns the recorded faults in payload order.
func (r *Result) Faults() []Fault {
	return r.faults[:r.nfaults]
}

// FaultCount returns the total number of rejected segments, including those
// beyond MaxFaults.
func (r *Result) FaultCount() int {
	return r.nfaults + r.dropped
}

func (r *Result) fault(kind FaultKind, off, n int) {
	if r.nfaults == len(r.faults) {
		r.dropped++
		return
	}
	r.faults[r.nfaults] = Fault{Kind: kind, Offset: off, Len: n}
	r.nfaults++
}

// Parse scans b once from left to right and returns the merged update. It
// does not allocate and never fails as a whole.
func Parse(b []byte) Result {
	var r Result
	start, eq := 0, -1
	for i := 0; i <= len(b); i++ {
		if i < len(b) {
			switch b[i] {
			case '=':
				if eq < 0 {
					eq = i
				}
				continue
			case ',', '\n':
			default:
				continue
			}
		}
		r.segment(b, start, i, eq)
		start, eq = i+1, -1
	}
	return r
}

// segment handles b[start:end]; eq is the index of its first '=' or -1.
func (r *Result) segment(b []byte, start, end, eq int) {
	if end > start && b[end-1] == '\r' {
		end--
	}
	if end == start {
		return
	}
	if eq < 0 || eq >= end {
		r.fault(FaultMissingSeparator, start, end-start)
		return
	}
	if eq-start != 1 {
		r.fault(FaultUnknownChannel, start, end-start)
		return
	}
	ch, ok := light.ChannelOf(b[start])
	if !ok {
		r.fault(FaultUnknownChannel, start, end-start)
		return
	}
	v, ok := parseUint8(b[eq+1 : end])
	if !ok {
		r.fault(FaultBadValue, start, end-start)
		return
	}
	r.Update.Set(ch, v)
}

func parseUint8(b []byte) (uint8, bool) {
	if len(b) == 0 {
		return 0, false
	}
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
		if n > 255 {
			return 0, false
		}
	}
	return uint8(n), true
}

// AppendUpdate appends the wire form of u to b, channels in r, g, b, a
// order. An empty update appends nothing.
func AppendUpdate(b []byte, u light.Update) []byte {
	first := true
	for _, ch := range light.Channels {
		v, ok := u.Lookup(ch)
		if !ok {
			continue
		}
		if !first {
			b = append(b, ',')
		}
		first = false
		b = append(b, byte(ch), '=')
		b = strconv.AppendUint(b, uint64(v), 10)
	}
	return b
}

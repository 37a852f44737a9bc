package light

import "fmt"

// Channel identifies one field of a LogicalColor by its wire letter.
type Channel byte

const (
	Red   Channel = 'r'
	Green Channel = 'g'
	Blue  Channel = 'b'
	Alpha Channel = 'a'
)

// Channels lists all channels in r, g, b, a order.
var Channels = [4]Channel{Red, Green, Blue, Alpha}

// ParseChannel maps a single-letter token to a Channel.
func ParseChannel(s string) (Channel, bool) {
	if len(s) != 1 {
		return 0, false
	}
	return ChannelOf(s[0])
}

// ChannelOf maps a byte to a Channel.
func ChannelOf(b byte) (Channel, bool) {
	switch Channel(b) {
	case Red, Green, Blue, Alpha:
		return Channel(b), true
	}
	return 0, false
}

func (ch Channel) index() int {
	switch ch {
	case Red:
		return 0
	case Green:
		return 1
	case Blue:
		return 2
	case Alpha:
		return 3
	}
	return -1
}

func (ch Channel) String() string {
	if ch.index() < 0 {
		return fmt.Sprintf("Channel(%q)", byte(ch))
	}
	return string(rune(ch))
}

// Update is a partial color update: a set of channels and their new values.
// The zero Update changes nothing. Update is a plain value and never
// allocates.
type Update struct {
	mask   uint8
	values [4]uint8
}

// Set records a new value for ch. Setting the same channel twice keeps the
// last value. Unknown channels are ignored.
func (u *Update) Set(ch Channel, v uint8) {
	i := ch.index()
	if i < 0 {
		return
	}
	u.mask |= 1 << i
	u.values[i] = v
}

// Lookup returns the value recorded for ch and whether it was set.
func (u Update) Lookup(ch Channel) (uint8, bool) {
	i := ch.index()
	if i < 0 || u.mask&(1<<i) == 0 {
		return 0, false
	}
	return u.values[i], true
}

// IsEmpty reports whether the update sets no channel.
func (u Update) IsEmpty() bool {
	return u.mask == 0
}

// Len returns the number of channels set.
func (u Update) Len() int {
	n := 0
	for m := u.mask; m != 0; m &= m - 1 {
		n++
	}
	return n
}

// ApplyTo returns c with the set channels overwritten.
func (u Update) ApplyTo(c LogicalColor) LogicalColor {
	if v, ok := u.Lookup(Red); ok {
		c.R = v
	}
	if v, ok := u.Lookup(Green); ok {
		c.G = v
	}
	if v, ok := u.Lookup(Blue); ok {
		c.B = v
	}
	if v, ok := u.Lookup(Alpha); ok {
		c.A = v
	}
	return c
}

// UpdateFrom returns an Update setting all four channels of c.
func UpdateFrom(c LogicalColor) Update {
	var u Update
	for _, ch := range Channels {
		u.Set(ch, c.Get(ch))
	}
	return u
}

package light

import (
	"errors"
	"testing"
)

// roundDiv returns round(v*a/255) using integer arithmetic only.
func roundDiv(v, a uint8) uint8 {
	return uint8((int(v)*int(a) + 127) / 255)
}

func TestCompositeFormula(t *testing.T) {
	for a := 0; a <= 255; a++ {
		for v := 0; v <= 255; v++ {
			c := LogicalColor{R: uint8(v), G: uint8(255 - v), B: uint8(v / 2), A: uint8(a)}
			got := Composite(c)
			want := PhysicalColor{
				R: roundDiv(c.R, c.A),
				G: roundDiv(c.G, c.A),
				B: roundDiv(c.B, c.A),
			}
			if got != want {
				t.Fatalf("Composite(%v) = %v, want %v", c, got, want)
			}
		}
	}
}

func TestCompositeIdentityAndBlack(t *testing.T) {
	c := LogicalColor{R: 12, G: 200, B: 255, A: 255}
	if got := Composite(c); got != (PhysicalColor{12, 200, 255}) {
		t.Fatalf("Composite with a=255 = %v, want identity", got)
	}
	c.A = 0
	if got := Composite(c); got != Off {
		t.Fatalf("Composite with a=0 = %v, want %v", got, Off)
	}
}

func TestCompositeHalfBrightness(t *testing.T) {
	got := Composite(LogicalColor{R: 255, G: 100, B: 1, A: 128})
	want := PhysicalColor{R: 128, G: 50, B: 1}
	if got != want {
		t.Fatalf("Composite = %v, want %v", got, want)
	}
}

func TestLogicalColorString(t *testing.T) {
	tests := []struct {
		c    LogicalColor
		want string
	}{
		{DefaultColor, "0,0,0,255"},
		{LogicalColor{10, 20, 30, 40}, "10,20,30,40"},
		{LogicalColor{255, 255, 255, 255}, "255,255,255,255"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestUpdateApplyTo(t *testing.T) {
	var u Update
	if !u.IsEmpty() {
		t.Fatal("zero Update should be empty")
	}
	u.Set(Red, 10)
	u.Set(Blue, 30)
	u.Set(Blue, 31)
	u.Set(Channel('x'), 99)

	if u.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", u.Len())
	}
	if _, ok := u.Lookup(Green); ok {
		t.Fatal("green should not be set")
	}
	got := u.ApplyTo(LogicalColor{R: 1, G: 2, B: 3, A: 4})
	want := LogicalColor{R: 10, G: 2, B: 31, A: 4}
	if got != want {
		t.Fatalf("ApplyTo = %v, want %v", got, want)
	}
}

func TestParseChannel(t *testing.T) {
	for _, s := range []string{"r", "g", "b", "a"} {
		ch, ok := ParseChannel(s)
		if !ok || ch.String() != s {
			t.Errorf("ParseChannel(%q) = %v, %v", s, ch, ok)
		}
	}
	for _, s := range []string{"", "x", "rg", "R"} {
		if _, ok := ParseChannel(s); ok {
			t.Errorf("ParseChannel(%q) should fail", s)
		}
	}
}

func TestUpdateFrom(t *testing.T) {
	c := LogicalColor{1, 2, 3, 4}
	if got := UpdateFrom(c).ApplyTo(DefaultColor); got != c {
		t.Fatalf("UpdateFrom round trip = %v, want %v", got, c)
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("10,20,30,40\n")
	if err != nil {
		t.Fatalf("ParseColor: %v", err)
	}
	if want := (LogicalColor{10, 20, 30, 40}); c != want {
		t.Fatalf("ParseColor = %v, want %v", c, want)
	}
	for _, s := range []string{"", "1,2,3", "1,2,3,4,5", "1,2,3,256", "a,b,c,d", "1, 2,3,4"} {
		if _, err := ParseColor(s); !errors.Is(err, ErrBadColor) {
			t.Errorf("ParseColor(%q) = %v, want ErrBadColor", s, err)
		}
	}
}

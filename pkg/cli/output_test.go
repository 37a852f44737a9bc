package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/haivivi/rgblight/pkg/light"
)

type record struct {
	Attempt int    `json:"attempt" yaml:"attempt"`
	Outcome string `json:"outcome" yaml:"outcome"`
}

func TestPrinterJSON(t *testing.T) {
	var buf bytes.Buffer
	p := Printer{Format: FormatJSON, W: &buf}
	if err := p.Print([]record{{1, "failed"}, {2, "connected"}}); err != nil {
		t.Fatalf("Print: %v", err)
	}
	var got []record
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if len(got) != 2 || got[1].Outcome != "connected" {
		t.Fatalf("decoded = %+v", got)
	}
}

func TestPrinterYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := (Printer{W: &buf}).Print(record{3, "timed_out"}); err != nil {
		t.Fatalf("Print: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "attempt: 3") || !strings.Contains(out, "outcome: timed_out") {
		t.Fatalf("yaml output = %q", out)
	}
}

func TestPrinterRaw(t *testing.T) {
	tests := []struct {
		v    any
		want string
	}{
		{"plain", "plain"},
		{[]byte("bytes"), "bytes"},
		{light.LogicalColor{R: 1, G: 2, B: 3, A: 4}, "1,2,3,4\n"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := (Printer{Format: FormatRaw, W: &buf}).Print(tt.v); err != nil {
			t.Fatalf("Print(%v): %v", tt.v, err)
		}
		if buf.String() != tt.want {
			t.Errorf("Print(%v) = %q, want %q", tt.v, buf.String(), tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatYAML, "yaml": FormatYAML, "json": FormatJSON, "raw": FormatRaw} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("table"); err == nil {
		t.Error("ParseFormat(table) should fail")
	}
	if err := (Printer{Format: "xml", W: &bytes.Buffer{}}).Print(1); err == nil {
		t.Error("Print with unknown format should fail")
	}
}

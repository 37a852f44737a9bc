// Package build reports which rgblight binary is running. The values are
// stamped by the release build:
//
//	go build -ldflags "\
//	  -X github.com/haivivi/rgblight/cmd/rgblight/internal/build.Version=v1.0.0 \
//	  -X github.com/haivivi/rgblight/cmd/rgblight/internal/build.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/haivivi/rgblight/cmd/rgblight/internal/build.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	  ./cmd/rgblight
//
// Unstamped builds report "dev".
package build

import (
	"fmt"
	"runtime"
)

// Stamped by -ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info is the structured form of the build information.
type Info struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
	Go      string `json:"go" yaml:"go"`
	OS      string `json:"os" yaml:"os"`
	Arch    string `json:"arch" yaml:"arch"`
}

// Current returns the build information of the running binary.
func Current() Info {
	return Info{
		Version: Version,
		Commit:  Commit,
		Date:    Date,
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
}

// String is the one-line banner printed by "rgblight version", for example
// "rgblight v1.0.0 (3f2a9c1) built 2026-10-19T08:00:00Z linux/arm64".
func String() string {
	return fmt.Sprintf("rgblight %s (%s) built %s %s/%s",
		Version, Commit, Date, runtime.GOOS, runtime.GOARCH)
}

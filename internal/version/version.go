// Package version provides build and version information.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Interactive inspector, YAML config, Prometheus metrics
// 0.2.0 - IERS finals2000A loader, UT1 interpolation across leap seconds
// 0.1.0 - Initial release: CIO-based GCRS/ITRS matrices, headless output

// String returns the version with the Go toolchain and, when the binary
// was built from a VCS checkout, the short revision.
func String() string {
	s := fmt.Sprintf("terraframe v%s (%s)", Version, runtime.Version())
	if rev := revision(); rev != "" {
		s += " " + rev
	}
	return s
}

func revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
			return setting.Value[:7]
		}
	}
	return ""
}

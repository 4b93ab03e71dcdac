// Package version reports the build version of the binary.
package version

import (
	"runtime/debug"
)

// Version and Commit are set at build time with -ldflags "-X".
var (
	Version = "dev"
	Commit  = ""
)

// String returns the version, falling back to module build info for
// `go install` builds.
func String() string {
	v, c := Version, Commit

	if info, ok := debug.ReadBuildInfo(); ok {
		if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}

		if c == "" {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					c = s.Value
				}
			}
		}
	}

	if len(c) > shortHashLen {
		c = c[:shortHashLen]
	}

	if c == "" {
		return v
	}

	return v + " (" + c + ")"
}

const shortHashLen = 12

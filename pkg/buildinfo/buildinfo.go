// Package buildinfo contains build information.
//
// Build information should be set during compilation by passing
// -ldflags "-X src.xs.sh/pkg/buildinfo.Var=value" to "go build".
package buildinfo

import (
	"runtime"
	"runtime/debug"
)

// Version identifies the version of XS. On development commits, it
// identifies the next release.
const Version = "0.1.0"

// VersionSuffix is appended to Version to build the full version string. If
// it is not overridden, it is derived from the VCS information embedded by
// the Go toolchain.
var VersionSuffix = ""

// Reproducible identifies whether the build is reproducible.
var Reproducible = "false"

// Info is the build information shown by "xs version".
type Info struct {
	Version      string `json:"version"`
	GoVersion    string `json:"goversion"`
	Reproducible bool   `json:"reproducible"`
}

// Value contains the build information of the running binary.
var Value = Info{
	Version:      Version + suffix(VersionSuffix, readBuildInfo()),
	GoVersion:    runtime.Version(),
	Reproducible: Reproducible == "true",
}

func readBuildInfo() *debug.BuildInfo {
	bi, _ := debug.ReadBuildInfo()
	return bi
}

func suffix(override string, bi *debug.BuildInfo) string {
	if override != "" {
		return override
	}
	if bi == nil {
		return "-dev.unknown"
	}
	var revision, modified string
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		}
	}
	if revision == "" {
		return "-dev.unknown"
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	s := "-dev." + revision
	if modified == "true" {
		s += "-dirty"
	}
	return s
}

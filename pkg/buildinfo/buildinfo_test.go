package buildinfo

import (
	"runtime/debug"
	"testing"
)

var suffixTests = []struct {
	name     string
	override string
	bi       *debug.BuildInfo
	want     string
}{
	{"override", "-release", &debug.BuildInfo{}, "-release"},
	{"no BuildInfo", "", nil, "-dev.unknown"},
	{"no VCS info", "", &debug.BuildInfo{}, "-dev.unknown"},
	{
		"VCS info",
		"",
		&debug.BuildInfo{Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "1234567890abcdef"},
			{Key: "vcs.modified", Value: "false"},
		}},
		"-dev.1234567890ab",
	},
	{
		"modified",
		"",
		&debug.BuildInfo{Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abcdef"},
			{Key: "vcs.modified", Value: "true"},
		}},
		"-dev.abcdef-dirty",
	},
}

func TestSuffix(t *testing.T) {
	for _, test := range suffixTests {
		t.Run(test.name, func(t *testing.T) {
			if got := suffix(test.override, test.bi); got != test.want {
				t.Errorf("got %q, want %q", got, test.want)
			}
		})
	}
}

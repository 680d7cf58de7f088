// Package buildinfo reports which timegrid build is running. Release builds
// stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/timegrid/pkg/buildinfo.Version=v0.4.0 \
//	    -X github.com/matzehuels/timegrid/pkg/buildinfo.Commit=$(git rev-parse HEAD)" ./cmd/timegrid
//
// Binaries from go install carry no ldflags; for those the module version
// and VCS stamp recorded by the toolchain are used instead.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Info is the resolved build identity.
type Info struct {
	Version string
	Commit  string
	Date    string
}

// Get returns the ldflags values, falling back to the toolchain's build
// metadata for whatever was not stamped.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "none":
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.Date == "unknown":
			info.Date = s.Value
		}
	}
	return info
}

// ShortCommit is the first seven characters of the commit, or "" when the
// commit is unknown.
func (i Info) ShortCommit() string {
	if i.Commit == "none" {
		return ""
	}
	return i.Commit[:min(len(i.Commit), 7)]
}

// Template is cobra's --version template.
func Template() string {
	i := Get()
	return fmt.Sprintf("{{.Name}} %s\ncommit: %s\nbuilt: %s\n", i.Version, i.Commit, i.Date)
}

// UserAgent identifies timegrid in feed requests.
func UserAgent() string {
	return "timegrid/" + Get().Version
}

// Generator names the producing build in exported JSON documents.
func Generator() string {
	i := Get()
	if c := i.ShortCommit(); c != "" {
		return fmt.Sprintf("timegrid %s (%s)", i.Version, c)
	}
	return "timegrid " + i.Version
}

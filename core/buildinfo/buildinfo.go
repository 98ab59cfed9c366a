// Package buildinfo reports which build of the bot is running.
//
// Release builds stamp the variables with -ldflags, for example
//
//	-X 'github.com/m3rciful/postbot/core/buildinfo.Version=v1.2.3'
//	-X 'github.com/m3rciful/postbot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/postbot/core/buildinfo.Date=2026-10-16T12:00:00Z'
//
// Unstamped builds fall back to the VCS settings the Go toolchain embeds.
package buildinfo

import "runtime/debug"

var (
	Version = "dev"
	Commit  = "local"
	Date    = ""
)

// Info is the resolved build description.
type Info struct {
	Version string
	Commit  string
	Date    string
	// Modified is set when the working tree had uncommitted changes.
	Modified bool
}

// Read merges the stamped variables with the embedded VCS settings; stamped
// values win.
func Read() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	return merge(info, bi)
}

func merge(info Info, bi *debug.BuildInfo) Info {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "local" && s.Value != "" {
				info.Commit = s.Value[:min(len(s.Value), 12)]
			}
		case "vcs.time":
			if info.Date == "" {
				info.Date = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

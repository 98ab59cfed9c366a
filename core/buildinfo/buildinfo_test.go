package buildinfo

import (
	"runtime/debug"
	"testing"
)

func TestMergePrefersStampedValues(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-10-01T10:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	got := merge(Info{Version: "dev", Commit: "local"}, bi)
	want := Info{Version: "v0.3.0", Commit: "0123456789ab", Date: "2026-10-01T10:00:00Z", Modified: true}
	if got != want {
		t.Fatalf("unstamped = %+v, want %+v", got, want)
	}

	stamped := merge(Info{Version: "v1.0.0", Commit: "abc", Date: "2026-10-16"}, bi)
	if stamped.Version != "v1.0.0" || stamped.Commit != "abc" || stamped.Date != "2026-10-16" {
		t.Fatalf("stamped values overridden: %+v", stamped)
	}
}

func TestMergeIgnoresDevelVersion(t *testing.T) {
	got := merge(Info{Version: "dev", Commit: "local"}, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if got.Version != "dev" || got.Commit != "local" {
		t.Fatalf("got %+v", got)
	}
}

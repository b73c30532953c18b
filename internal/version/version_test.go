package version

import (
	"runtime"
	"strings"
	"testing"
)

func withBuild(t *testing.T, version, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, Commit, Date
	Version, Commit, Date = version, commit, date
	t.Cleanup(func() {
		Version, Commit, Date = origVersion, origCommit, origDate
	})
}

func TestGetInfo(t *testing.T) {
	withBuild(t, "1.0.0", "abc123def456", "2026-01-01T12:00:00Z")

	info := GetInfo()

	if info.Version != "1.0.0" {
		t.Errorf("Version = %q, want %q", info.Version, "1.0.0")
	}
	if info.Commit != "abc123def456" {
		t.Errorf("Commit = %q, want %q", info.Commit, "abc123def456")
	}
	if info.Date != "2026-01-01T12:00:00Z" {
		t.Errorf("Date = %q, want %q", info.Date, "2026-01-01T12:00:00Z")
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
	if want := runtime.GOOS + "/" + runtime.GOARCH; info.Platform != want {
		t.Errorf("Platform = %q, want %q", info.Platform, want)
	}
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		name     string
		info     Info
		contains []string
	}{
		{
			name: "long commit is shortened",
			info: Info{Version: "1.2.3", Commit: "abcdef1234567890", Date: "2026-10-01", GoVersion: "go1.24.6", Platform: "linux/amd64"},
			contains: []string{
				"boss 1.2.3",
				"(abcdef12)",
				"built 2026-10-01",
				"with go1.24.6",
				"for linux/amd64",
			},
		},
		{
			name:     "short commit is kept",
			info:     Info{Version: "dev", Commit: "abc", Date: "unknown", GoVersion: "go1.24.6", Platform: "darwin/arm64"},
			contains: []string{"boss dev", "(abc)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.info.String()
			for _, want := range tt.contains {
				if !strings.Contains(s, want) {
					t.Errorf("String() = %q, missing %q", s, want)
				}
			}
		})
	}
}

func TestUserAgent(t *testing.T) {
	info := Info{Version: "0.4.0", Platform: "linux/arm64"}
	if got, want := info.UserAgent(), "boss-cli/0.4.0 (linux/arm64)"; got != want {
		t.Errorf("UserAgent() = %q, want %q", got, want)
	}
}

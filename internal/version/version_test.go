package version

import (
	"strings"
	"testing"
	"time"
)

// withBuildInfo swaps the build variables for the duration of a test.
func withBuildInfo(t *testing.T, version, commit, date string) {
	t.Helper()
	oldVersion, oldCommit, oldDate := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = version, commit, date
	t.Cleanup(func() { Version, GitCommit, BuildDate = oldVersion, oldCommit, oldDate })
}

func TestInvalidVersion(t *testing.T) {
	if _, err := GetInfo(); err != nil {
		t.Fatalf("default version must be valid semver: %v", err)
	}

	withBuildInfo(t, "not-a-version", "unknown", "unknown")
	if _, err := GetInfo(); err == nil {
		t.Error("GetInfo should fail for an invalid version")
	}
	if got := GetFormattedVersion(); !strings.Contains(got, "invalid version") {
		t.Errorf("GetFormattedVersion() = %q", got)
	}
	if got := GetDetailedVersion(); !strings.Contains(got, "error:") {
		t.Errorf("GetDetailedVersion() = %q", got)
	}
}

func TestBuildMetadata(t *testing.T) {
	tests := []struct {
		name        string
		version     string
		metadata    string
		commitCount int
		prerelease  bool
	}{
		{name: "plain release", version: "0.1.0"},
		{name: "commit count metadata", version: "0.1.0+42.abc1234", metadata: "42.abc1234", commitCount: 42},
		{name: "non numeric metadata", version: "1.2.3+abc", metadata: "abc"},
		{name: "prerelease", version: "1.0.0-rc.1", prerelease: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuildInfo(t, tt.version, "unknown", "unknown")

			if got := GetBuildMetadata(); got != tt.metadata {
				t.Errorf("GetBuildMetadata() = %q, want %q", got, tt.metadata)
			}
			if got := GetCommitCount(); got != tt.commitCount {
				t.Errorf("GetCommitCount() = %d, want %d", got, tt.commitCount)
			}
			if got := IsPrerelease(); got != tt.prerelease {
				t.Errorf("IsPrerelease() = %v, want %v", got, tt.prerelease)
			}
		})
	}
}

func TestGetFormattedVersion(t *testing.T) {
	withBuildInfo(t, "0.3.1", "0123456789abcdef", "2026-10-01")

	got := GetFormattedVersion()
	want := "calcshell v0.3.1, commit 0123456, built 2026-10-01"
	if got != want {
		t.Errorf("GetFormattedVersion() = %q, want %q", got, want)
	}
}

func TestGetDetailedVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		commit  string
		date    string
		want    []string
	}{
		{
			name:    "release build",
			version: "0.3.1",
			commit:  "0123456789abcdef",
			date:    "2026-10-01",
			want:    []string{"calcshell v0.3.1", "Channel: release", "Git Commit: 0123456789abcdef", "Build Date: 2026-10-01 00:00:00 UTC", "Go Version:"},
		},
		{
			name:    "prerelease build",
			version: "1.0.0-rc.1+7.abc",
			commit:  "abc",
			date:    "2026-10-16T08:30:00Z",
			want:    []string{"Channel: prerelease", "Build Date: 2026-10-16 08:30:00 UTC", "Commit Count: 7", "Build Metadata: 7.abc"},
		},
		{
			name:    "development build",
			version: "0.1.0",
			commit:  "unknown",
			date:    "unknown",
			want:    []string{"Channel: development", "Build Date: unknown"},
		},
		{
			name:    "unparseable build date is shown as given",
			version: "0.1.0",
			commit:  "abc",
			date:    "yesterday",
			want:    []string{"Channel: release", "Build Date: yesterday"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuildInfo(t, tt.version, tt.commit, tt.date)

			detailed := GetDetailedVersion()
			for _, line := range tt.want {
				if !strings.Contains(detailed, line) {
					t.Errorf("GetDetailedVersion() missing %q:\n%s", line, detailed)
				}
			}
		})
	}
}

func TestGetBuildTime(t *testing.T) {
	withBuildInfo(t, "0.1.0", "abc", "unknown")
	if _, err := GetBuildTime(); err == nil {
		t.Error("expected error for unknown build date")
	}
	if !IsDevelopment() {
		t.Error("a build without a date is a development build")
	}

	withBuildInfo(t, "0.1.0", "abc", "2026-10-16")
	got, err := GetBuildTime()
	if err != nil {
		t.Fatalf("GetBuildTime() error: %v", err)
	}
	if !got.Equal(time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("GetBuildTime() = %v", got)
	}
	if IsDevelopment() {
		t.Error("a build with commit and date is not a development build")
	}

	withBuildInfo(t, "0.1.0", "abc", "yesterday")
	if _, err := GetBuildTime(); err == nil {
		t.Error("expected error for unparseable build date")
	}
}

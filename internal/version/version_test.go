package version

import (
	"testing"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestColoredWithoutColor(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	tests := []struct {
		in   string
		want string
	}{
		{"1.2.3", "1.2.3"},
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.0.0-rc.1", "1.0.0-rc.1"},
		{"nightly", "nightly"},
	}
	for _, tt := range tests {
		Version = tt.in
		if got := Colored(false); got != tt.want {
			t.Errorf("Colored(false) with %q = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLongIncludesMetadata(t *testing.T) {
	origV, origC, origD := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origV, origC, origD }()

	Version = "1.2.3"
	GitCommit = "abc123"
	BuildDate = "2024-01-15T10:30:00Z"
	if got, want := Long(false), "1.2.3 (commit abc123, built 2024-01-15T10:30:00Z)"; got != want {
		t.Fatalf("Long() = %q, want %q", got, want)
	}
	GitCommit, BuildDate = "", ""
	if got := Long(false); got != "1.2.3" {
		t.Fatalf("Long() without metadata = %q", got)
	}
}

package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Version information for the venir CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Version with major/minor/patch coloured separately.
// Pre-release suffixes stay uncoloured.
func Colored(enable bool) string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	paint := []*color.Color{versionMajorColor, versionMinorColor, versionPatchColor}
	out := make([]string, 3)
	for i, p := range parts {
		c := *paint[i]
		if enable {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		out[i] = c.Sprint(p)
	}
	s := strings.Join(out, ".")
	if suffix != "" {
		s += "-" + suffix
	}
	return s
}

// Long returns the version with optional build metadata.
func Long(enable bool) string {
	s := Colored(enable)
	var meta []string
	if GitCommit != "" {
		meta = append(meta, "commit "+GitCommit)
	}
	if BuildDate != "" {
		meta = append(meta, "built "+BuildDate)
	}
	if len(meta) > 0 {
		s = fmt.Sprintf("%s (%s)", s, strings.Join(meta, ", "))
	}
	return s
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"venir/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

func newVersionCmd() *cobra.Command {
	var format, colorMode string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show venir build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "json":
				return renderVersionJSON(out)
			case "pretty":
				fmt.Fprintf(out, "venir %s\n", version.Long(useColor(colorMode, out)))
				return nil
			}
			return usageError{fmt.Errorf("unsupported format %q (must be pretty or json)", format)}
		},
	}
	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")
	cmd.Flags().StringVar(&colorMode, "color", "auto", "colorize output (auto|on|off)")
	return cmd
}

func renderVersionJSON(out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(versionPayload{
		Tool:      "venir",
		Version:   version.Version,
		GitCommit: version.GitCommit,
		BuildDate: version.BuildDate,
	})
}

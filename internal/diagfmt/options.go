package diagfmt

import (
	"fmt"
	"io"

	"venir/internal/diag"
)

// Format selects the renderer for the diagnostics sink.
type Format uint8

const (
	// FormatJSON emits one JSON record per line.
	FormatJSON Format = iota
	// FormatPretty emits human oriented, optionally coloured text.
	FormatPretty
)

func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "pretty":
		return FormatPretty, nil
	}
	return 0, fmt.Errorf("unknown diagnostics format %q (want json|pretty)", s)
}

func (f Format) String() string {
	if f == FormatPretty {
		return "pretty"
	}
	return "json"
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color    bool
	ShowHelp bool
}

// NewReporter builds the sink for the chosen format.
func NewReporter(w io.Writer, format Format, opts PrettyOpts) diag.Diagnostics {
	if format == FormatPretty {
		return NewPrettyReporter(w, opts)
	}
	return NewJSONReporter(w)
}

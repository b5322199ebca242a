// Package source reads the locations embedded in span strings. The front
// end renders every IR span as a "(file, start, end)" tuple followed by
// free text; solver messages quote the same tuples.
package source

import "regexp"

var tuplePrefix = regexp.MustCompile(`^\((\d+), (\d+), (\d+)\)`)

// ExtractPrefix returns the leading "(file, start, end)" tuple of text,
// or an empty string when text does not start with one.
func ExtractPrefix(text string) string {
	return tuplePrefix.FindString(text)
}

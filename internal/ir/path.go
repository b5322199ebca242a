package ir

import (
	"strings"
)

// Path is a fully qualified name: the owning unit (krate) followed by
// module/item segments.
type Path struct {
	Krate    string   `json:"krate"`
	Segments []string `json:"segments,omitempty"`
}

// NewPath builds a path from a krate name and segments.
func NewPath(krate string, segments ...string) Path {
	return Path{Krate: krate, Segments: append([]string(nil), segments...)}
}

// ParsePath splits "krate::a::b" back into a Path.
func ParsePath(s string) Path {
	parts := strings.Split(s, "::")
	return Path{Krate: parts[0], Segments: parts[1:]}
}

func (p Path) String() string {
	if len(p.Segments) == 0 {
		return p.Krate
	}
	return p.Krate + "::" + strings.Join(p.Segments, "::")
}

func (p Path) IsZero() bool {
	return p.Krate == "" && len(p.Segments) == 0
}

func (p Path) Equal(o Path) bool {
	if p.Krate != o.Krate || len(p.Segments) != len(o.Segments) {
		return false
	}
	for i := range p.Segments {
		if p.Segments[i] != o.Segments[i] {
			return false
		}
	}
	return true
}

// Compare orders paths by krate, then segment-wise; shorter prefixes first.
func (p Path) Compare(o Path) int {
	if c := strings.Compare(p.Krate, o.Krate); c != 0 {
		return c
	}
	for i := 0; i < len(p.Segments) && i < len(o.Segments); i++ {
		if c := strings.Compare(p.Segments[i], o.Segments[i]); c != 0 {
			return c
		}
	}
	return len(p.Segments) - len(o.Segments)
}

// Last returns the final segment (or the krate name for a bare krate path).
func (p Path) Last() string {
	if len(p.Segments) == 0 {
		return p.Krate
	}
	return p.Segments[len(p.Segments)-1]
}

// Parent drops the last segment.
func (p Path) Parent() Path {
	if len(p.Segments) == 0 {
		return p
	}
	return Path{Krate: p.Krate, Segments: append([]string(nil), p.Segments[:len(p.Segments)-1]...)}
}

// Child appends one segment.
func (p Path) Child(name string) Path {
	segs := make([]string, 0, len(p.Segments)+1)
	segs = append(segs, p.Segments...)
	segs = append(segs, name)
	return Path{Krate: p.Krate, Segments: segs}
}

// Clone returns a path that shares no backing array with p.
func (p Path) Clone() Path {
	return Path{Krate: p.Krate, Segments: append([]string(nil), p.Segments...)}
}

func clonePathPtr(p *Path) *Path {
	if p == nil {
		return nil
	}
	c := p.Clone()
	return &c
}

package ir

import (
	"encoding/json"
	"fmt"
	"io"
)

// DecodeJSON reads one whole unit from r. The input is consumed completely
// before decoding starts; trailing data after the unit is an error.
func DecodeJSON(r io.Reader) (*Unit, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read unit: %w", err)
	}
	var u Unit
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("failed to deserialize unit: %w", err)
	}
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("failed to deserialize unit: %w", err)
	}
	return &u, nil
}

// Validate checks the structural shape of the unit: names present, and every
// expression tree well-shaped. Semantic checks live in internal/wellformed.
// A missing function kind defaults to static.
func (u *Unit) Validate() error {
	if u.Name == "" {
		return fmt.Errorf("unit has no name")
	}
	for _, m := range u.Modules {
		if m.Path.IsZero() {
			return fmt.Errorf("module without path in unit %q", u.Name)
		}
	}
	for _, f := range u.Functions {
		if f == nil {
			return fmt.Errorf("null function in unit %q", u.Name)
		}
		if f.Name.IsZero() {
			return fmt.Errorf("function without name in unit %q", u.Name)
		}
		switch f.Mode {
		case ModeSpec, ModeProof, ModeExec:
		default:
			return fmt.Errorf("function %s: unknown mode %q", f.Name, f.Mode)
		}
		if f.Kind == "" {
			f.Kind = FunStatic
		}
		switch f.Kind {
		case FunStatic, FunTraitMethodDecl, FunTraitMethodImpl:
		default:
			return fmt.Errorf("function %s: unknown kind %q", f.Name, f.Kind)
		}
		for _, e := range f.Exprs() {
			if err := e.Check(); err != nil {
				return fmt.Errorf("function %s: %w", f.Name, err)
			}
		}
	}
	for _, d := range u.Datatypes {
		if d == nil || d.Name.IsZero() {
			return fmt.Errorf("datatype without name in unit %q", u.Name)
		}
	}
	for _, t := range u.Traits {
		if t == nil || t.Name.IsZero() {
			return fmt.Errorf("trait without name in unit %q", u.Name)
		}
	}
	return nil
}

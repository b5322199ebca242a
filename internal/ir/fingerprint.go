package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes keep function and datatype digests apart.
const (
	domainFunction = "venir/function-sig/v1"
	domainDatatype = "venir/datatype-sig/v1"
)

func hashWithDomain(domain, data string) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

func canonicalName(s string) string {
	return norm.NFC.String(s)
}

// Fingerprint digests the externally visible signature of f: name, mode,
// kind, parameter names/modes/types and the return type. Bodies and
// specifications are not part of the signature, so a declaration and its
// full definition share a fingerprint.
func Fingerprint(f *Function) string {
	var sb strings.Builder
	sb.WriteString(canonicalName(f.Name.String()))
	sb.WriteString("|")
	sb.WriteString(string(f.Mode))
	sb.WriteString("|")
	sb.WriteString(string(f.Kind))
	sb.WriteString("(")
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(canonicalName(p.Name))
		sb.WriteString(":")
		sb.WriteString(string(p.Mode))
		sb.WriteString(":")
		sb.WriteString(canonicalName(p.Typ.String()))
	}
	sb.WriteString(")")
	if f.Ret != nil {
		sb.WriteString("->")
		sb.WriteString(canonicalName(f.Ret.Typ.String()))
	}
	return hashWithDomain(domainFunction, sb.String())
}

// DatatypeFingerprint digests the variants and fields of d.
func DatatypeFingerprint(d *Datatype) string {
	var sb strings.Builder
	sb.WriteString(canonicalName(d.Name.String()))
	for _, v := range d.Variants {
		sb.WriteString("|")
		sb.WriteString(canonicalName(v.Name))
		sb.WriteString("{")
		for i, f := range v.Fields {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(canonicalName(f.Name))
			sb.WriteString(":")
			sb.WriteString(canonicalName(f.Typ.String()))
		}
		sb.WriteString("}")
	}
	return hashWithDomain(domainDatatype, sb.String())
}

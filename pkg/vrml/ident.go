package vrml

import (
	"fmt"
	"strings"
)

var (
	objectReplacer   = strings.NewReplacer(".", "_", " ", "_")
	materialReplacer = strings.NewReplacer(".", "_", " ", "-")
)

// ToVrmlID converts an object name to a VRML node identifier.
// Distinct names can collide ("a.b" and "a b" both give "_a_b"); callers
// use the result for naming only, never as a unique key.
func ToVrmlID(name string) string {
	return "_" + objectReplacer.Replace(name)
}

// ToMaterialID converts a material name. Unlike ToVrmlID there is no
// leading underscore, so a re-imported file keeps the material's name shape.
func ToMaterialID(name string) string {
	return materialReplacer.Replace(name)
}

// ToASCIIEscaped replaces every rune above U+00FF with its uppercase
// hexadecimal code point.
func ToASCIIEscaped(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r <= 0xFF {
			b.WriteRune(r)
			continue
		}
		fmt.Fprintf(&b, "%X", r)
	}
	return b.String()
}

// Sanitizer produces identifiers, optionally escaping non-Latin-1 runes
// first; KiCad does not resolve names outside that range.
type Sanitizer struct {
	ASCII bool
}

// ObjectID is ToVrmlID with optional escaping.
func (s Sanitizer) ObjectID(name string) string {
	if s.ASCII {
		name = ToASCIIEscaped(name)
	}
	return ToVrmlID(name)
}

// MaterialID is ToMaterialID with optional escaping.
func (s Sanitizer) MaterialID(name string) string {
	if s.ASCII {
		name = ToASCIIEscaped(name)
	}
	return ToMaterialID(name)
}

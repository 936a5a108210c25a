// internal/domain/unit/unit.go
package unit

import "strings"

// Unit is the canonical organizational-unit identifier. It is stored on the
// user row and as the vehicle's title label; access scoping compares the two
// directly instead of juggling per-unit booleans.
type Unit string

const (
	UP1  Unit = "UP1"
	UP2  Unit = "UP2"
	UP3  Unit = "UP3"
	UP4  Unit = "UP4"
	UP5  Unit = "UP5"
	UP6  Unit = "UP6"
	UP7  Unit = "UP7"
	UP8  Unit = "UP8"
	UP9  Unit = "UP9"
	DG   Unit = "DG"
	INST Unit = "INST"
)

// All lists every recognized unit.
var All = []Unit{UP1, UP2, UP3, UP4, UP5, UP6, UP7, UP8, UP9, DG, INST}

// Normalize maps free-form input ("up3", " Dg ") to its canonical form.
// The empty string stays empty; unrecognized values are returned upper-cased
// so Valid can reject them at the boundary.
func Normalize(s string) Unit {
	return Unit(strings.ToUpper(strings.TrimSpace(s)))
}

func (u Unit) String() string { return string(u) }

// Valid reports whether u is one of the recognized units.
func (u Unit) Valid() bool {
	for _, known := range All {
		if u == known {
			return true
		}
	}
	return false
}

// Flags derives the legacy per-unit boolean map some API consumers still
// expect (keys "up1".."up9", "dg", "inst"). The booleans are never stored;
// the canonical identifier is the single source of truth.
func (u Unit) Flags() map[string]bool {
	flags := make(map[string]bool, len(All))
	for _, known := range All {
		flags[strings.ToLower(string(known))] = known == u
	}
	return flags
}

package vrml

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SnapEpsilon is the magnitude below which emitted values are written as 0.
const SnapEpsilon = 1e-5

// Snap returns 0 for |v| < SnapEpsilon and v otherwise.
func Snap(v float64) float64 {
	if math.Abs(v) < SnapEpsilon {
		return 0
	}
	return v
}

// Coord formats a vertex coordinate with 6 significant digits.
func Coord(v float64) string {
	return fmt.Sprintf("%.6g", Snap(v))
}

// Color formats a color channel or intensity with 3 significant digits.
func Color(v float64) string {
	return fmt.Sprintf("%.3g", v)
}

// General formats translation, rotation and scale values in their
// shortest round-trip form.
func General(v float64) string {
	return strconv.FormatFloat(Snap(v), 'g', -1, 64)
}

// Triple joins three values formatted by f with single spaces.
func Triple(f func(float64) string, x, y, z float64) string {
	return f(x) + " " + f(y) + " " + f(z)
}

// QuoteName quotes a name for a comment line: single quotes unless the
// name contains a single quote and no double quote. Backslashes and
// control characters are escaped.
func QuoteName(name string) string {
	q := byte('\'')
	if strings.Contains(name, "'") && !strings.Contains(name, `"`) {
		q = '"'
	}

	var b strings.Builder
	b.WriteByte(q)
	for _, r := range name {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteByte(q)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

package mesh

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fogleman/simplify"

	"github.com/maznobu/kicadwrl/pkg/math"
)

// Modifier errors.
var (
	ErrUnknownModifier = errors.New("unknown modifier type")
	ErrModifierParam   = errors.New("invalid modifier parameter")
)

// MirrorMergeDistance is the distance from the mirror plane within which
// mirrored vertices are welded to their originals.
const MirrorMergeDistance = 0.001

// ModifierKind identifies a procedural modifier.
type ModifierKind int

const (
	ModifierMirror ModifierKind = iota + 1
	ModifierArray
	ModifierDecimate
)

// String returns the scene-file name of the modifier kind.
func (k ModifierKind) String() string {
	switch k {
	case ModifierMirror:
		return "MIRROR"
	case ModifierArray:
		return "ARRAY"
	case ModifierDecimate:
		return "DECIMATE"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// ParseModifierKind parses a scene-file modifier name.
func ParseModifierKind(s string) (ModifierKind, error) {
	switch strings.ToUpper(s) {
	case "MIRROR":
		return ModifierMirror, nil
	case "ARRAY":
		return ModifierArray, nil
	case "DECIMATE":
		return ModifierDecimate, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownModifier, s)
}

// Modifier is one entry of an object's modifier stack. Only the fields
// relevant to Kind are used.
type Modifier struct {
	Kind ModifierKind

	// Mirror
	Axis int // 0=X, 1=Y, 2=Z

	// Array
	Count    int
	Offset   math.Vec3 // constant offset between copies
	Relative math.Vec3 // offset as a factor of the bounding box size

	// Decimate
	Ratio float64 // fraction of triangles to keep, (0, 1]
}

// Validate checks the parameters used by Kind.
func (md Modifier) Validate() error {
	switch md.Kind {
	case ModifierMirror:
		if md.Axis < 0 || md.Axis > 2 {
			return fmt.Errorf("%w: mirror axis %d", ErrModifierParam, md.Axis)
		}
	case ModifierArray:
		if md.Count < 1 {
			return fmt.Errorf("%w: array count %d", ErrModifierParam, md.Count)
		}
	case ModifierDecimate:
		if md.Ratio <= 0 || md.Ratio > 1 {
			return fmt.Errorf("%w: decimate ratio %g", ErrModifierParam, md.Ratio)
		}
	default:
		return fmt.Errorf("%w: %v", ErrUnknownModifier, md.Kind)
	}
	return nil
}

// Apply returns a new mesh with the modifier applied; in is not modified.
func (md Modifier) Apply(in *Mesh) (*Mesh, error) {
	if err := md.Validate(); err != nil {
		return nil, err
	}
	switch md.Kind {
	case ModifierMirror:
		return mirror(in, md.Axis), nil
	case ModifierArray:
		return array(in, md.Count, md.Offset, md.Relative), nil
	default:
		return decimate(in, md.Ratio), nil
	}
}

// ApplyStack evaluates the modifiers in order on a copy of in.
func ApplyStack(in *Mesh, mods []Modifier) (*Mesh, error) {
	out := in.Clone()
	for i, md := range mods {
		next, err := md.Apply(out)
		if err != nil {
			return nil, fmt.Errorf("modifier %d (%v): %w", i, md.Kind, err)
		}
		out = next
	}
	return out, nil
}

func axisValue(v math.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

func mirror(in *Mesh, axis int) *Mesh {
	out := in.Clone()
	flip := [3]float64{1, 1, 1}
	flip[axis] = -1

	// Vertices on the mirror plane are shared instead of duplicated.
	remap := make([]int, len(in.Vertices))
	for i, v := range in.Vertices {
		if a := axisValue(v, axis); a >= -MirrorMergeDistance && a <= MirrorMergeDistance {
			remap[i] = i
			continue
		}
		remap[i] = len(out.Vertices)
		out.Vertices = append(out.Vertices, v.Mul(math.Vec3{X: flip[0], Y: flip[1], Z: flip[2]}))
	}

	// Reflection flips orientation, so mirrored faces are reversed.
	for _, f := range in.Faces {
		nf := make([]int, len(f))
		for i, v := range f {
			nf[len(f)-1-i] = remap[v]
		}
		out.Faces = append(out.Faces, nf)
	}
	return out
}

func array(in *Mesh, count int, offset, relative math.Vec3) *Mesh {
	lo, hi := in.Bounds()
	step := offset.Add(relative.Mul(hi.Sub(lo)))

	out := &Mesh{Name: in.Name}
	for i := 0; i < count; i++ {
		c := in.Clone()
		c.Transform(math.Translate(step.Scale(float64(i))))
		out.Append(c)
	}
	return out
}

func decimate(in *Mesh, ratio float64) *Mesh {
	tri := in.Clone()
	tri.Triangulate()
	if ratio >= 1 || len(tri.Faces) == 0 {
		return tri
	}

	triangles := make([]*simplify.Triangle, 0, len(tri.Faces))
	for _, f := range tri.Faces {
		triangles = append(triangles, &simplify.Triangle{
			V1: toSimplify(tri.Vertices[f[0]]),
			V2: toSimplify(tri.Vertices[f[1]]),
			V3: toSimplify(tri.Vertices[f[2]]),
		})
	}
	reduced := simplify.NewMesh(triangles).Simplify(ratio)

	out := &Mesh{Name: in.Name}
	index := make(map[simplify.Vector]int)
	vertex := func(v simplify.Vector) int {
		if i, ok := index[v]; ok {
			return i
		}
		i := len(out.Vertices)
		index[v] = i
		out.Vertices = append(out.Vertices, math.Vec3{X: v.X, Y: v.Y, Z: v.Z})
		return i
	}
	for _, t := range reduced.Triangles {
		out.Faces = append(out.Faces, []int{vertex(t.V1), vertex(t.V2), vertex(t.V3)})
	}
	return out
}

func toSimplify(v math.Vec3) simplify.Vector {
	return simplify.Vector{X: v.X, Y: v.Y, Z: v.Z}
}

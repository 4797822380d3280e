// Package mesh provides the polygon mesh used as export working copy,
// along with triangulation, a small modifier stack and loaders for
// Wavefront OBJ and glTF geometry.
package mesh

import (
	"errors"
	"fmt"

	"github.com/maznobu/kicadwrl/pkg/math"
)

// Mesh errors.
var (
	ErrFaceIndex    = errors.New("face references missing vertex")
	ErrFaceTooSmall = errors.New("face has fewer than 3 vertices")
)

// Mesh is an indexed polygon mesh. Faces are ordered vertex index lists;
// after Triangulate every face has exactly three entries.
type Mesh struct {
	Name     string
	Vertices []math.Vec3
	Faces    [][]int
}

// Clone returns a deep copy that can be modified freely.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Name:     m.Name,
		Vertices: append([]math.Vec3(nil), m.Vertices...),
		Faces:    make([][]int, len(m.Faces)),
	}
	for i, f := range m.Faces {
		out.Faces[i] = append([]int(nil), f...)
	}
	return out
}

// Validate checks that every face has at least three in-range indices.
func (m *Mesh) Validate() error {
	for i, f := range m.Faces {
		if len(f) < 3 {
			return fmt.Errorf("%w: face %d", ErrFaceTooSmall, i)
		}
		for _, v := range f {
			if v < 0 || v >= len(m.Vertices) {
				return fmt.Errorf("%w: face %d index %d (%d vertices)", ErrFaceIndex, i, v, len(m.Vertices))
			}
		}
	}
	return nil
}

// IsTriangulated reports whether all faces are triangles.
func (m *Mesh) IsTriangulated() bool {
	for _, f := range m.Faces {
		if len(f) != 3 {
			return false
		}
	}
	return true
}

// Transform applies mat to every vertex in place.
func (m *Mesh) Transform(mat math.Mat4) {
	for i, v := range m.Vertices {
		m.Vertices[i] = mat.TransformPoint(v)
	}
}

// Append adds the geometry of other, re-indexing its faces.
func (m *Mesh) Append(other *Mesh) {
	base := len(m.Vertices)
	m.Vertices = append(m.Vertices, other.Vertices...)
	for _, f := range other.Faces {
		nf := make([]int, len(f))
		for i, v := range f {
			nf[i] = v + base
		}
		m.Faces = append(m.Faces, nf)
	}
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *Mesh) Bounds() (lo, hi math.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		lo = math.Vec3{X: min(lo.X, v.X), Y: min(lo.Y, v.Y), Z: min(lo.Z, v.Z)}
		hi = math.Vec3{X: max(hi.X, v.X), Y: max(hi.Y, v.Y), Z: max(hi.Z, v.Z)}
	}
	return
}

// Cube returns an axis-aligned cube centered on the origin with the
// vertex and face order of Blender's default cube.
func Cube(size float64) *Mesh {
	h := size / 2
	return &Mesh{
		Name: "Cube",
		Vertices: []math.Vec3{
			{X: h, Y: h, Z: h},
			{X: h, Y: h, Z: -h},
			{X: h, Y: -h, Z: h},
			{X: h, Y: -h, Z: -h},
			{X: -h, Y: h, Z: h},
			{X: -h, Y: h, Z: -h},
			{X: -h, Y: -h, Z: h},
			{X: -h, Y: -h, Z: -h},
		},
		Faces: [][]int{
			{0, 4, 6, 2},
			{3, 2, 6, 7},
			{7, 6, 4, 5},
			{5, 1, 3, 7},
			{1, 0, 2, 3},
			{5, 4, 0, 1},
		},
	}
}

// Plane returns a single quad of the given size in the XY plane.
func Plane(size float64) *Mesh {
	h := size / 2
	return &Mesh{
		Name: "Plane",
		Vertices: []math.Vec3{
			{X: -h, Y: -h}, {X: h, Y: -h}, {X: -h, Y: h}, {X: h, Y: h},
		},
		Faces: [][]int{{0, 1, 3, 2}},
	}
}

package mesh

import "github.com/maznobu/kicadwrl/pkg/math"

// Triangulate converts every face to triangles in place. Quads are split
// along their shorter diagonal; larger polygons are ear-clipped in their
// own plane, falling back to a fan when the polygon is degenerate.
// Vertex order and indices are left untouched.
func (m *Mesh) Triangulate() {
	faces := make([][]int, 0, len(m.Faces))
	for _, f := range m.Faces {
		switch {
		case len(f) < 3:
			continue
		case len(f) == 3:
			faces = append(faces, f)
		case len(f) == 4:
			faces = append(faces, m.splitQuad(f)...)
		default:
			faces = append(faces, m.earClip(f)...)
		}
	}
	m.Faces = faces
}

func (m *Mesh) splitQuad(f []int) [][]int {
	v := m.Vertices
	d02 := v[f[0]].Sub(v[f[2]]).Length()
	d13 := v[f[1]].Sub(v[f[3]]).Length()
	if d13 < d02 {
		return [][]int{{f[0], f[1], f[3]}, {f[1], f[2], f[3]}}
	}
	return [][]int{{f[0], f[1], f[2]}, {f[0], f[2], f[3]}}
}

// newellNormal returns the (unnormalized) normal of a possibly non-planar polygon.
func (m *Mesh) newellNormal(f []int) math.Vec3 {
	var n math.Vec3
	for i := range f {
		a := m.Vertices[f[i]]
		b := m.Vertices[f[(i+1)%len(f)]]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

func (m *Mesh) earClip(f []int) [][]int {
	normal := m.newellNormal(f)
	if normal.Length() == 0 {
		return fan(f)
	}

	ring := append([]int(nil), f...)
	var tris [][]int
	for len(ring) > 3 {
		ear := -1
		for i := range ring {
			a := ring[(i+len(ring)-1)%len(ring)]
			b := ring[i]
			c := ring[(i+1)%len(ring)]
			if m.isEar(ring, a, b, c, normal) {
				ear = i
				tris = append(tris, []int{a, b, c})
				break
			}
		}
		if ear < 0 {
			return append(tris, fan(ring)...)
		}
		ring = append(ring[:ear], ring[ear+1:]...)
	}
	return append(tris, []int{ring[0], ring[1], ring[2]})
}

func (m *Mesh) isEar(ring []int, a, b, c int, normal math.Vec3) bool {
	pa, pb, pc := m.Vertices[a], m.Vertices[b], m.Vertices[c]
	if pb.Sub(pa).Cross(pc.Sub(pb)).Dot(normal) <= 0 {
		return false
	}
	for _, i := range ring {
		if i == a || i == b || i == c {
			continue
		}
		if inTriangle(m.Vertices[i], pa, pb, pc, normal) {
			return false
		}
	}
	return true
}

func inTriangle(p, a, b, c, normal math.Vec3) bool {
	return b.Sub(a).Cross(p.Sub(a)).Dot(normal) >= 0 &&
		c.Sub(b).Cross(p.Sub(b)).Dot(normal) >= 0 &&
		a.Sub(c).Cross(p.Sub(c)).Dot(normal) >= 0
}

func fan(f []int) [][]int {
	tris := make([][]int, 0, len(f)-2)
	for i := 1; i < len(f)-1; i++ {
		tris = append(tris, []int{f[0], f[i], f[i+1]})
	}
	return tris
}

package mesh

import (
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/maznobu/kicadwrl/pkg/math"
)

func writeTriangleGLB(t *testing.T) string {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: "Tri",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]uint32{gltf.POSITION: pos},
		}},
	})

	path := filepath.Join(t.TempDir(), "tri.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary() error = %v", err)
	}
	return path
}

func TestLoadGLTF(t *testing.T) {
	path := writeTriangleGLB(t)

	m, err := LoadGLTF(path, "")
	if err != nil {
		t.Fatalf("LoadGLTF() error = %v", err)
	}
	if m.Name != "tri" {
		t.Errorf("expected name tri, got %q", m.Name)
	}
	if len(m.Vertices) != 3 || len(m.Faces) != 1 {
		t.Fatalf("expected 3 vertices and 1 face, got %d and %d", len(m.Vertices), len(m.Faces))
	}
	// Y-up (0,1,0) becomes Z-up (0,0,1).
	if m.Vertices[2] != (math.Vec3{X: 0, Y: 0, Z: 1}) {
		t.Errorf("expected (0,0,1), got %v", m.Vertices[2])
	}
}

func TestLoadGLTFByName(t *testing.T) {
	path := writeTriangleGLB(t)

	m, err := LoadGLTF(path, "Tri")
	if err != nil {
		t.Fatalf("LoadGLTF() error = %v", err)
	}
	if m.Name != "Tri" {
		t.Errorf("expected name Tri, got %q", m.Name)
	}
	if _, err := LoadGLTF(path, "Missing"); err == nil {
		t.Error("expected error for missing mesh")
	}
}

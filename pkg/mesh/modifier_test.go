package mesh

import (
	"errors"
	"testing"

	"github.com/maznobu/kicadwrl/pkg/math"
)

func grid(n int) *Mesh {
	m := &Mesh{Name: "Grid"}
	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			m.Vertices = append(m.Vertices, math.V3(float64(x), float64(y), 0))
		}
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			i := y*(n+1) + x
			m.Faces = append(m.Faces, []int{i, i + 1, i + n + 2, i + n + 1})
		}
	}
	return m
}

func TestParseModifierKind(t *testing.T) {
	for _, k := range []ModifierKind{ModifierMirror, ModifierArray, ModifierDecimate} {
		got, err := ParseModifierKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseModifierKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseModifierKind("SUBSURF"); !errors.Is(err, ErrUnknownModifier) {
		t.Errorf("expected ErrUnknownModifier, got %v", err)
	}
}

func TestModifierValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  Modifier
		want error
	}{
		{"mirror ok", Modifier{Kind: ModifierMirror, Axis: 2}, nil},
		{"mirror axis", Modifier{Kind: ModifierMirror, Axis: 3}, ErrModifierParam},
		{"array count", Modifier{Kind: ModifierArray}, ErrModifierParam},
		{"decimate zero", Modifier{Kind: ModifierDecimate}, ErrModifierParam},
		{"decimate over", Modifier{Kind: ModifierDecimate, Ratio: 1.5}, ErrModifierParam},
		{"unknown", Modifier{}, ErrUnknownModifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.mod.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMirrorMergesPlaneVertices(t *testing.T) {
	m := &Mesh{
		Vertices: []math.Vec3{{}, {X: 1}, {Y: 1}},
		Faces:    [][]int{{0, 1, 2}},
	}
	out, err := Modifier{Kind: ModifierMirror, Axis: 0}.Apply(m)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if len(out.Vertices) != 4 {
		t.Fatalf("expected 4 vertices, got %d", len(out.Vertices))
	}
	if out.Vertices[3] != math.V3(-1, 0, 0) {
		t.Errorf("expected mirrored vertex (-1,0,0), got %v", out.Vertices[3])
	}
	want := []int{2, 3, 0}
	for i, v := range out.Faces[1] {
		if v != want[i] {
			t.Fatalf("expected mirrored face %v, got %v", want, out.Faces[1])
		}
	}
	if len(m.Vertices) != 3 || len(m.Faces) != 1 {
		t.Error("Apply() modified its input")
	}
}

func TestMirrorCube(t *testing.T) {
	out, err := Modifier{Kind: ModifierMirror, Axis: 1}.Apply(Cube(2))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(out.Vertices) != 16 || len(out.Faces) != 12 {
		t.Errorf("expected 16 vertices and 12 faces, got %d and %d", len(out.Vertices), len(out.Faces))
	}
}

func TestArray(t *testing.T) {
	out, err := Modifier{Kind: ModifierArray, Count: 3, Relative: math.V3(1, 0, 0)}.Apply(Cube(2))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(out.Vertices) != 24 || len(out.Faces) != 18 {
		t.Errorf("expected 24 vertices and 18 faces, got %d and %d", len(out.Vertices), len(out.Faces))
	}
	lo, hi := out.Bounds()
	if lo.X != -1 || hi.X != 5 {
		t.Errorf("expected x range [-1, 5], got [%v, %v]", lo.X, hi.X)
	}

	out, err = Modifier{Kind: ModifierArray, Count: 2, Offset: math.V3(0, 0, 10)}.Apply(Cube(2))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if _, hi := out.Bounds(); hi.Z != 11 {
		t.Errorf("expected max z 11, got %v", hi.Z)
	}
}

func TestDecimate(t *testing.T) {
	in := grid(10)
	out, err := Modifier{Kind: ModifierDecimate, Ratio: 0.5}.Apply(in)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !out.IsTriangulated() {
		t.Error("expected decimated mesh to be triangulated")
	}
	if n := len(out.Faces); n == 0 || n >= 200 {
		t.Errorf("expected between 1 and 199 triangles, got %d", n)
	}
	if err := out.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	full, err := Modifier{Kind: ModifierDecimate, Ratio: 1}.Apply(in)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(full.Faces) != 200 {
		t.Errorf("ratio 1 should keep all 200 triangles, got %d", len(full.Faces))
	}
}

func TestApplyStack(t *testing.T) {
	stack := []Modifier{
		{Kind: ModifierArray, Count: 2, Offset: math.V3(3, 0, 0)},
		{Kind: ModifierMirror, Axis: 0},
	}
	in := Cube(2)
	out, err := ApplyStack(in, stack)
	if err != nil {
		t.Fatalf("ApplyStack() error = %v", err)
	}
	if len(out.Vertices) != 32 {
		t.Errorf("expected 32 vertices, got %d", len(out.Vertices))
	}
	if len(in.Vertices) != 8 {
		t.Error("ApplyStack() modified its input")
	}

	_, err = ApplyStack(in, []Modifier{{Kind: ModifierArray}})
	if !errors.Is(err, ErrModifierParam) {
		t.Errorf("expected ErrModifierParam, got %v", err)
	}
}

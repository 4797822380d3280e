package math

import (
	"errors"
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(V3(1, 2, 3))
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(V3(5, 10, 15))

	// Translation should be in column 4 (indices 12, 13, 14)
	if got := m.Translation(); got != V3(5, 10, 15) {
		t.Errorf("Translate: got %v, want (5, 10, 15)", got)
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(V3(10, 20, 30)).Mul(Scale(2, 2, 2))
	got := m.TransformPoint(V3(1, 2, 3))

	want := V3(12, 24, 36)
	if got != want {
		t.Errorf("TransformPoint: got %v, want %v", got, want)
	}
}

func TestRotateY90(t *testing.T) {
	m := RotateY(math.Pi / 2)
	result := m.TransformPoint(V3(1, 0, 0))

	// After 90 degree Y rotation, (1,0,0) should become approximately (0,0,-1)
	if !near(result, V3(0, 0, -1), 1e-9) {
		t.Errorf("RotateY 90: got %v, want (0, 0, -1)", result)
	}
}

func TestInverse(t *testing.T) {
	m := Compose(V3(1, -2, 3), V3(0.3, 0.2, -0.1), V3(2, 2, 2))
	p := m.Inverse().Mul(m).TransformPoint(V3(4, 5, 6))
	if !near(p, V3(4, 5, 6), 1e-9) {
		t.Errorf("M^-1 * M should be identity, moved point to %v", p)
	}
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		name  string
		loc   Vec3
		rot   Vec3
		scale Vec3
	}{
		{"identity", V3(0, 0, 0), V3(0, 0, 0), V3(1, 1, 1)},
		{"translated", V3(1, 2, 3), V3(0, 0, 0), V3(1, 1, 1)},
		{"rotated z", V3(0, 0, 0), V3(0, 0, math.Pi/4), V3(1, 1, 1)},
		{"scaled", V3(0, 0, 5), V3(0, 0, 0), V3(0.3937, 0.3937, 0.3937)},
		{"all", V3(-1, 4, 2), V3(0.1, -0.2, 0.3), V3(2, 3, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, rot, scale := Compose(tt.loc, tt.rot, tt.scale).Decompose()
			if !near(loc, tt.loc, 1e-9) {
				t.Errorf("loc = %v, want %v", loc, tt.loc)
			}
			if !near(scale, tt.scale, 1e-9) {
				t.Errorf("scale = %v, want %v", scale, tt.scale)
			}
			if e := rot.ToEuler(); !near(e, tt.rot, 1e-9) {
				t.Errorf("rot euler = %v, want %v", e, tt.rot)
			}
		})
	}
}

func TestDecomposeNegativeScale(t *testing.T) {
	_, _, scale := Scale(-1, 1, 1).Decompose()
	if !near(scale, V3(-1, -1, -1), 1e-12) {
		t.Errorf("mirrored matrix should report negated scale, got %v", scale)
	}
}

func TestAxisConversion(t *testing.T) {
	tests := []struct {
		name      string
		forward   string
		up        string
		in, want  Vec3
		wantError bool
	}{
		{"default", "Y", "Z", V3(1, 2, 3), V3(1, 2, 3), false},
		{"forward -Z up Y forward", "-Z", "Y", V3(0, 1, 0), V3(0, 0, -1), false},
		{"forward -Z up Y up", "-Z", "Y", V3(0, 0, 1), V3(0, 1, 0), false},
		{"forward -Z up Y right", "-Z", "Y", V3(1, 0, 0), V3(1, 0, 0), false},
		{"same axis", "Y", "-Y", Vec3{}, Vec3{}, true},
		{"bad name", "W", "Z", Vec3{}, Vec3{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := AxisConversion("Y", "Z", tt.forward, tt.up)
			if tt.wantError {
				if !errors.Is(err, ErrInvalidAxis) {
					t.Errorf("expected ErrInvalidAxis, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := m.TransformPoint(tt.in); !near(got, tt.want, 1e-12) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func near(a, b Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

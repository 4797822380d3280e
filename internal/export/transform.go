package export

import (
	gomath "math"
	"slices"

	"github.com/maznobu/kicadwrl/internal/config"
	"github.com/maznobu/kicadwrl/pkg/math"
	"github.com/maznobu/kicadwrl/pkg/vrml"
)

// Axis frame of the scene; the configured forward/up axes are relative to it.
const (
	sceneForward = "Y"
	sceneUp      = "Z"
)

// LocalTransform returns the axis conversion followed by the global
// scale. It is computed once per run.
func LocalTransform(cfg config.ExportConfig) (math.Mat4, error) {
	axis, err := math.AxisConversion(sceneForward, sceneUp, cfg.AxisForward, cfg.AxisUp)
	if err != nil {
		return math.Mat4{}, err
	}
	return axis.Mul(math.UniformScale(cfg.GlobalScale)), nil
}

// ObjectLocalMatrix moves world by -origin and applies the run's local
// transform: Translate(-origin) * world * local.
func ObjectLocalMatrix(origin math.Vec3, world, local math.Mat4) math.Mat4 {
	return math.Translate(origin.Negate()).Mul(world).Mul(local)
}

// Rotation is one VRML rotation field: signed unit axes and an angle in
// radians.
type Rotation struct {
	Axis  [3]int
	Angle float64
}

// angleTolerance is the difference below which two Euler magnitudes are
// treated as one.
const angleTolerance = 1e-9

// ExpandRotation splits XYZ Euler angles into VRML rotations. Angles
// below vrml.SnapEpsilon count as zero. Axes whose angles share the same
// magnitude, within angleTolerance, are merged into one entry carrying
// each axis' sign; entries appear in the order their magnitude is first
// seen. When nothing remains a single all-zero entry is returned.
func ExpandRotation(euler math.Vec3) []Rotation {
	var out []Rotation
	for i, v := range euler.Array() {
		v = vrml.Snap(v)
		mag := gomath.Abs(v)
		if mag == 0 {
			continue
		}
		k := slices.IndexFunc(out, func(r Rotation) bool {
			return gomath.Abs(r.Angle-mag) < angleTolerance
		})
		if k < 0 {
			k = len(out)
			out = append(out, Rotation{Angle: mag})
		}
		out[k].Axis[i] = sign(v)
	}

	if len(out) == 0 {
		return []Rotation{{}}
	}
	return out
}

func sign(v float64) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// Components are the values of a VRML Transform node.
type Components struct {
	Translation math.Vec3
	Rotations   []Rotation
	Scale       math.Vec3
}

// Decompose splits m into VRML transform components. The translation is
// multiplied element-wise by the scale.
func Decompose(m math.Mat4) Components {
	loc, rot, scale := m.Decompose()
	return Components{
		Translation: loc.Mul(scale),
		Rotations:   ExpandRotation(rot.ToEuler()),
		Scale:       scale,
	}
}

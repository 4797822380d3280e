package export

import (
	"github.com/maznobu/kicadwrl/internal/scene"
)

// DefaultColorFloor is the lowest base channel value used in color
// composition.
const DefaultColorFloor = 0.01

// EmissiveWeight is the fixed per-channel weight of the emissive term.
var EmissiveWeight = scene.RGB{0.3, 0.3, 0.3}

// CompositeColor returns max(base, floor) * amplify * weight per channel.
// Results are not clamped to 1.
func CompositeColor(base, weight scene.RGB, amplify, floor float64) scene.RGB {
	var out scene.RGB
	for c := range out {
		out[c] = max(base[c], floor) * amplify * weight[c]
	}
	return out
}

// BaseColor returns the base color and alpha of a material. When the
// material uses nodes, the color of the last BSDF node that has one wins,
// and alpha is taken from the Principled BSDF in alpha-blend mode.
// Otherwise the result is white and opaque.
func BaseColor(m *scene.Material) (scene.RGB, float64) {
	base, alpha := scene.White, 1.0
	if !m.UseNodes {
		return base, alpha
	}

	blend := m.BlendMode == scene.BlendAlpha
	for _, n := range m.Nodes {
		if !n.Kind.IsBSDF() {
			continue
		}
		if blend && n.Kind == scene.NodeBSDFPrincipled && n.Alpha != nil {
			alpha = *n.Alpha
		}
		if n.Color != nil {
			base = *n.Color
		}
	}
	return base, alpha
}

// firstMaterial returns the first non-empty material slot, or nil.
func firstMaterial(slots []*scene.Material) *scene.Material {
	for _, m := range slots {
		if m != nil {
			return m
		}
	}
	return nil
}

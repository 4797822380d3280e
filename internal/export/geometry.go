package export

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/maznobu/kicadwrl/internal/scene"
	"github.com/maznobu/kicadwrl/pkg/math"
	"github.com/maznobu/kicadwrl/pkg/mesh"
	"github.com/maznobu/kicadwrl/pkg/vrml"
)

// withEvaluatedMesh calls fn with a mesh the caller may modify freely.
// With modifiers applied the mesh belongs to a host duplicate; the
// duplicate, the selection and the object's edit mode are restored on
// every exit path.
func (e *Exporter) withEvaluatedMesh(obj *scene.Object, fn func(*mesh.Mesh) error) error {
	if !e.cfg.ApplyModifiers {
		if obj.Mesh == nil {
			return fmt.Errorf("%w: %q", scene.ErrNoMesh, obj.Name)
		}
		return fn(obj.Mesh.Clone())
	}

	sel := e.host.Selection()
	defer e.host.RestoreSelection(sel)

	if obj.EditMode {
		e.host.SetEditMode(obj, false)
		defer e.host.SetEditMode(obj, true)
	}

	if err := e.host.Activate(obj); err != nil {
		return fmt.Errorf("activate %q: %w", obj.Name, err)
	}
	dup, err := e.host.DuplicateEvaluated()
	if err != nil {
		return fmt.Errorf("evaluate %q: %w", obj.Name, err)
	}
	defer func() {
		if err := e.host.Remove(dup); err != nil {
			e.log.Warn("Failed to remove evaluated duplicate",
				zap.String("object", obj.Name),
				zap.String("duplicate", dup.Name),
				zap.Error(err))
		}
	}()

	return fn(dup.Mesh)
}

// exportObject writes obj as one Transform node followed by last.
func (e *Exporter) exportObject(w *vrml.Writer, obj *scene.Object, origin math.Vec3, last string) error {
	if obj.Kind != scene.KindMesh {
		panic(fmt.Sprintf("export: object %q is %v, not a mesh", obj.Name, obj.Kind))
	}

	return e.withEvaluatedMesh(obj, func(m *mesh.Mesh) error {
		// Triangulation must happen before the transform is looked at.
		m.Triangulate()

		c := Decompose(ObjectLocalMatrix(origin, obj.WorldMatrix(), e.local))

		e.log.Debug("Exporting object",
			zap.String("object", obj.Name),
			zap.Int("vertices", len(m.Vertices)),
			zap.Int("faces", len(m.Faces)))

		w.EmitLine("Transform {", 0)
		w.EmitLine("translation "+vrml.Triple(vrml.General, c.Translation.X, c.Translation.Y, c.Translation.Z), 0)
		for _, r := range c.Rotations {
			w.Linef("rotation %d %d %d %s", r.Axis[0], r.Axis[1], r.Axis[2], vrml.General(r.Angle))
		}
		w.EmitLine("scale "+vrml.Triple(vrml.General, c.Scale.X, c.Scale.Y, c.Scale.Z), 0)
		w.EmitLine("children [", 0)
		e.writeShape(w, obj, m)
		w.EmitLine("]", 0)
		w.EmitLine("}"+last, 0)

		return w.Err()
	})
}

// writeShape writes the Shape node: the appearance of the first material
// slot in use and the triangulated geometry.
func (e *Exporter) writeShape(w *vrml.Writer, obj *scene.Object, m *mesh.Mesh) {
	w.EmitLine("Shape {", 0)
	// KiCad does not render geometry without a Material node, even an empty one.
	w.EmitLine("appearance Appearance {", 0)
	w.EmitLine("material Material {", 0)
	if mat := firstMaterial(obj.Materials); mat != nil {
		e.writeMaterial(w, obj, mat)
	} else {
		w.EmitLine("# No material definition.", 0)
	}
	w.EmitLine("}", 0)
	w.EmitLine("}", 0)

	w.EmitLine("geometry IndexedFaceSet {", 0)
	w.EmitLine("coord Coordinate {", 0)
	w.EmitLine("point [", 0)
	for i, v := range m.Vertices {
		w.EmitLine(vrml.Triple(vrml.Coord, v.X, v.Y, v.Z)+separator(i, len(m.Vertices)), 0)
	}
	w.EmitLine("]", 0)
	w.EmitLine("}", 0)

	w.EmitLine("coordIndex [", 0)
	for i, f := range m.Faces {
		w.Linef("%d, %d, %d, -1%s", f[0], f[1], f[2], separator(i, len(m.Faces)))
	}
	w.EmitLine("]", 0)
	w.EmitLine("}", 0)
	w.EmitLine("}", 0)
}

func (e *Exporter) writeMaterial(w *vrml.Writer, obj *scene.Object, mat *scene.Material) {
	ao := 1.0
	if f := e.host.World().AOFactor; f != nil {
		ao = *f
	}
	base, alpha := BaseColor(mat)

	diffuse := e.composite(obj, "diffuse", base, mat.DiffuseColor)
	emissive := e.composite(obj, "emissive", base, EmissiveWeight)
	specular := e.composite(obj, "specular", base, mat.SpecularColor)

	w.Linef("# Material %s, %s", vrml.QuoteName(e.ids.MaterialID(mat.Name)), e.ids.ObjectID(mat.Name))
	w.EmitLine("diffuseColor "+vrml.Triple(vrml.Color, diffuse[0], diffuse[1], diffuse[2]), 0)
	w.EmitLine("emissiveColor "+vrml.Triple(vrml.Color, emissive[0], emissive[1], emissive[2]), 0)
	w.EmitLine("specularColor "+vrml.Triple(vrml.Color, specular[0], specular[1], specular[2]), 0)
	w.EmitLine("ambientIntensity "+vrml.Color(ao), 0)
	w.EmitLine("transparency "+vrml.Color(1-alpha), 0)
	w.EmitLine("shininess "+vrml.Color(mat.SpecularIntensity), 0)
}

func (e *Exporter) composite(obj *scene.Object, term string, base, weight scene.RGB) scene.RGB {
	out := CompositeColor(base, weight, e.cfg.ColorAmplify, DefaultColorFloor)
	e.log.Debug("Composite color",
		zap.String("object", obj.Name),
		zap.String("term", term),
		zap.Float64s("base", base[:]),
		zap.Float64s("weight", weight[:]),
		zap.Float64s("color", out[:]))
	return out
}

// separator returns the list separator for item i of n.
func separator(i, n int) string {
	if i < n-1 {
		return ","
	}
	return ""
}

// Package scene holds the headless scene graph the exporter reads: plain
// object, material and world records loaded from a scene file, plus the
// host operations (selection, edit mode, evaluated duplicates) that the
// exporter needs around modifier evaluation.
package scene

import (
	"fmt"
	"strings"

	"github.com/maznobu/kicadwrl/pkg/math"
	"github.com/maznobu/kicadwrl/pkg/mesh"
)

// ObjectKind is the type of a scene object.
type ObjectKind int

const (
	KindMesh ObjectKind = iota + 1
	KindEmpty
	KindCamera
	KindLight
	KindCurve
)

var kindNames = map[ObjectKind]string{
	KindMesh:   "MESH",
	KindEmpty:  "EMPTY",
	KindCamera: "CAMERA",
	KindLight:  "LIGHT",
	KindCurve:  "CURVE",
}

// String returns the scene-file name of the kind.
func (k ObjectKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Unknown(%d)", int(k))
}

// ParseObjectKind parses a scene-file object type.
func ParseObjectKind(s string) (ObjectKind, error) {
	u := strings.ToUpper(s)
	for k, name := range kindNames {
		if name == u {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownObjectKind, s)
}

// Object is one node of the scene graph. The exporter treats it as
// read-only; only Scene mutates selection and edit state.
type Object struct {
	Name     string
	Kind     ObjectKind
	Parent   *Object
	Children []*Object

	Location math.Vec3
	Rotation math.Vec3 // XYZ Euler, radians
	Scale    math.Vec3

	Visible  bool
	Selected bool
	EditMode bool

	// Materials are the object's material slots; a nil entry is an empty slot.
	Materials []*Material
	Modifiers []mesh.Modifier
	Mesh      *mesh.Mesh
}

// LocalMatrix returns the transform relative to the parent.
func (o *Object) LocalMatrix() math.Mat4 {
	return math.Compose(o.Location, o.Rotation, o.Scale)
}

// WorldMatrix returns the transform relative to the world, composed
// parent-first.
func (o *Object) WorldMatrix() math.Mat4 {
	m := o.LocalMatrix()
	for p := o.Parent; p != nil; p = p.Parent {
		m = p.LocalMatrix().Mul(m)
	}
	return m
}

// Position returns the world-space location of the object's origin.
func (o *Object) Position() math.Vec3 {
	return o.WorldMatrix().Translation()
}

// Root returns the topmost ancestor, or o itself when it has no parent.
func (o *Object) Root() *Object {
	cur := o
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

// Descendants returns all children recursively, depth-first in child order.
func (o *Object) Descendants() []*Object {
	var out []*Object
	for _, c := range o.Children {
		out = append(out, c)
		out = append(out, c.Descendants()...)
	}
	return out
}

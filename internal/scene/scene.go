package scene

import (
	"errors"
	"fmt"

	"github.com/maznobu/kicadwrl/pkg/mesh"
)

// Scene errors.
var (
	ErrUnknownObjectKind = errors.New("unknown object type")
	ErrUnknownNodeKind   = errors.New("unknown shader node type")
	ErrDuplicateName     = errors.New("duplicate object name")
	ErrParentNotFound    = errors.New("parent not found")
	ErrNotInScene        = errors.New("object not in scene")
	ErrNoMesh            = errors.New("object has no mesh")
)

// Selection is a snapshot of the selected objects and the active object.
type Selection struct {
	Active   *Object
	Selected []*Object
}

// Scene is an ordered collection of objects with a single world. It
// plays the part of the host application for the exporter.
type Scene struct {
	objects []*Object
	byName  map[string]*Object
	world   World
	active  *Object

	duplicates map[*Object]bool
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{
		byName:     make(map[string]*Object),
		duplicates: make(map[*Object]bool),
	}
}

// Add appends obj to the scene. When obj.Parent is set, the parent must
// already be in the scene and obj is linked as its last child.
func (s *Scene) Add(obj *Object) error {
	if _, dup := s.byName[obj.Name]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateName, obj.Name)
	}
	if obj.Parent != nil {
		if s.byName[obj.Parent.Name] != obj.Parent {
			return fmt.Errorf("%w: %q (parent of %q)", ErrParentNotFound, obj.Parent.Name, obj.Name)
		}
		obj.Parent.Children = append(obj.Parent.Children, obj)
	}
	s.objects = append(s.objects, obj)
	s.byName[obj.Name] = obj
	return nil
}

// Object returns the object with the given name, or nil.
func (s *Scene) Object(name string) *Object {
	return s.byName[name]
}

// Objects returns the scene objects in scene order. The slice is a copy.
func (s *Scene) Objects() []*Object {
	return append([]*Object(nil), s.objects...)
}

// World returns the scene world settings.
func (s *Scene) World() World {
	return s.world
}

// SetWorld replaces the world settings.
func (s *Scene) SetWorld(w World) {
	s.world = w
}

// Active returns the active object, or nil.
func (s *Scene) Active() *Object {
	return s.active
}

// Selection captures the current selection and active object.
func (s *Scene) Selection() Selection {
	sel := Selection{Active: s.active}
	for _, o := range s.objects {
		if o.Selected {
			sel.Selected = append(sel.Selected, o)
		}
	}
	return sel
}

// RestoreSelection makes sel the current selection. Objects that have
// been removed from the scene since the snapshot are ignored.
func (s *Scene) RestoreSelection(sel Selection) {
	keep := make(map[*Object]bool, len(sel.Selected))
	for _, o := range sel.Selected {
		keep[o] = true
	}
	for _, o := range s.objects {
		o.Selected = keep[o]
	}
	s.active = nil
	if sel.Active != nil && s.byName[sel.Active.Name] == sel.Active {
		s.active = sel.Active
	}
}

// Activate deselects everything, then selects obj and makes it active.
func (s *Scene) Activate(obj *Object) error {
	if s.byName[obj.Name] != obj {
		return fmt.Errorf("%w: %q", ErrNotInScene, obj.Name)
	}
	for _, o := range s.objects {
		o.Selected = false
	}
	obj.Selected = true
	s.active = obj
	return nil
}

// SetEditMode switches obj into or out of edit mode.
func (s *Scene) SetEditMode(obj *Object, on bool) {
	obj.EditMode = on
}

// DuplicateEvaluated adds a copy of the active object with its modifier
// stack applied to the scene and returns it. The copy has no modifiers,
// is selected and becomes the active object. It must be released with
// Remove.
func (s *Scene) DuplicateEvaluated() (*Object, error) {
	src := s.active
	if src == nil {
		return nil, fmt.Errorf("%w: no active object", ErrNotInScene)
	}
	if src.Mesh == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoMesh, src.Name)
	}
	evaluated, err := mesh.ApplyStack(src.Mesh, src.Modifiers)
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", src.Name, err)
	}

	dup := &Object{
		Name:      s.uniqueName(src.Name),
		Kind:      src.Kind,
		Location:  src.Location,
		Rotation:  src.Rotation,
		Scale:     src.Scale,
		Visible:   src.Visible,
		Materials: append([]*Material(nil), src.Materials...),
		Mesh:      evaluated,
	}
	dup.Parent = src.Parent
	if err := s.Add(dup); err != nil {
		return nil, err
	}
	if err := s.Activate(dup); err != nil {
		return nil, err
	}
	s.duplicates[dup] = true
	return dup, nil
}

// Remove deletes obj, and unlinks it from its parent.
func (s *Scene) Remove(obj *Object) error {
	if s.byName[obj.Name] != obj {
		return fmt.Errorf("%w: %q", ErrNotInScene, obj.Name)
	}
	delete(s.byName, obj.Name)
	for i, o := range s.objects {
		if o == obj {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			break
		}
	}
	if p := obj.Parent; p != nil {
		for i, c := range p.Children {
			if c == obj {
				p.Children = append(p.Children[:i], p.Children[i+1:]...)
				break
			}
		}
	}
	if s.active == obj {
		s.active = nil
	}
	delete(s.duplicates, obj)
	return nil
}

// LiveDuplicates returns the number of evaluated duplicates that have not
// been removed.
func (s *Scene) LiveDuplicates() int {
	return len(s.duplicates)
}

// uniqueName returns name with the first free ".NNN" suffix.
func (s *Scene) uniqueName(name string) string {
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s.%03d", name, i)
		if _, taken := s.byName[candidate]; !taken {
			return candidate
		}
	}
}

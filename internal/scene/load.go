package scene

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/maznobu/kicadwrl/pkg/math"
	"github.com/maznobu/kicadwrl/pkg/mesh"
)

// File is the on-disk scene document.
type File struct {
	World     *WorldSpec     `yaml:"world"`
	Materials []MaterialSpec `yaml:"materials"`
	Objects   []ObjectSpec   `yaml:"objects"`
}

// WorldSpec describes world light settings.
type WorldSpec struct {
	AOFactor *float64 `yaml:"ao_factor"`
}

// MaterialSpec describes a material.
type MaterialSpec struct {
	Name              string     `yaml:"name"`
	DiffuseColor      *RGB       `yaml:"diffuse_color"`
	SpecularColor     *RGB       `yaml:"specular_color"`
	SpecularIntensity *float64   `yaml:"specular_intensity"`
	BlendMethod       string     `yaml:"blend_method"`
	UseNodes          bool       `yaml:"use_nodes"`
	Nodes             []NodeSpec `yaml:"nodes"`
}

// NodeSpec describes a shader node.
type NodeSpec struct {
	Kind      string   `yaml:"kind"`
	BaseColor *RGB     `yaml:"base_color"`
	Alpha     *float64 `yaml:"alpha"`
}

// ObjectSpec describes an object.
type ObjectSpec struct {
	Name      string         `yaml:"name"`
	Type      string         `yaml:"type"`
	Parent    string         `yaml:"parent"`
	Location  *[3]float64    `yaml:"location"`
	Rotation  *[3]float64    `yaml:"rotation"`
	Scale     *[3]float64    `yaml:"scale"`
	Visible   *bool          `yaml:"visible"`
	Selected  bool           `yaml:"selected"`
	EditMode  bool           `yaml:"edit_mode"`
	Materials []string       `yaml:"materials"`
	Modifiers []ModifierSpec `yaml:"modifiers"`
	Mesh      *MeshSpec      `yaml:"mesh"`
}

// ModifierSpec describes a modifier stack entry.
type ModifierSpec struct {
	Type           string      `yaml:"type"`
	Axis           string      `yaml:"axis"`
	Count          int         `yaml:"count"`
	Offset         *[3]float64 `yaml:"offset"`
	RelativeOffset *[3]float64 `yaml:"relative_offset"`
	Ratio          float64     `yaml:"ratio"`
}

// MeshSpec selects the geometry source of a mesh object. Exactly one of
// Primitive, Vertices, OBJ or GLTF is expected. Name picks one object of
// an OBJ file or one mesh of a glTF file; Encoding is the character set
// of an OBJ file.
type MeshSpec struct {
	Primitive string       `yaml:"primitive"`
	Size      float64      `yaml:"size"`
	Vertices  [][3]float64 `yaml:"vertices"`
	Faces     [][]int      `yaml:"faces"`
	OBJ       string       `yaml:"obj"`
	GLTF      string       `yaml:"gltf"`
	Name      string       `yaml:"mesh"`
	Encoding  string       `yaml:"encoding"`
}

// Load reads a scene file. Relative mesh paths are resolved against the
// directory of the scene file.
func Load(path string) (*Scene, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if expanded, err := homedir.Expand(path); err == nil {
		dir = filepath.Dir(expanded)
	}
	s, err := f.Build(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return s, nil
}

// MeshFiles lists the external geometry files a scene file references,
// resolved against dir.
func (f *File) MeshFiles(dir string) []string {
	var out []string
	for _, o := range f.Objects {
		if o.Mesh == nil {
			continue
		}
		for _, p := range []string{o.Mesh.OBJ, o.Mesh.GLTF} {
			if p != "" {
				out = append(out, resolvePath(dir, p))
			}
		}
	}
	return out
}

// ReadFile parses a scene file without building it.
func ReadFile(path string) (*File, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrapf(err, "expand %s", path)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, errors.Wrap(err, "read scene")
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return &f, nil
}

// Build turns the document into a Scene. dir is used to resolve relative
// mesh file paths.
func (f *File) Build(dir string) (*Scene, error) {
	s := New()
	if f.World != nil {
		s.SetWorld(World{AOFactor: f.World.AOFactor})
	}

	materials := make(map[string]*Material, len(f.Materials))
	for i, ms := range f.Materials {
		m, err := ms.build()
		if err != nil {
			return nil, errors.Wrapf(err, "material %d (%q)", i, ms.Name)
		}
		materials[m.Name] = m
	}

	// Objects are created first so parents may be declared after children.
	objects := make([]*Object, len(f.Objects))
	byName := make(map[string]*Object, len(f.Objects))
	for i, spec := range f.Objects {
		o, err := spec.build(dir, materials)
		if err != nil {
			return nil, errors.Wrapf(err, "object %d (%q)", i, spec.Name)
		}
		if _, dup := byName[o.Name]; dup {
			return nil, errors.Wrapf(ErrDuplicateName, "object %q", o.Name)
		}
		objects[i] = o
		byName[o.Name] = o
	}
	for i, spec := range f.Objects {
		if spec.Parent == "" {
			continue
		}
		p, ok := byName[spec.Parent]
		if !ok {
			return nil, errors.Wrapf(ErrParentNotFound, "object %q parent %q", spec.Name, spec.Parent)
		}
		objects[i].Parent = p
	}
	for _, o := range objects {
		depth := 0
		for p := o.Parent; p != nil; p = p.Parent {
			if depth++; depth > len(objects) {
				return nil, errors.Errorf("object %q: parent cycle", o.Name)
			}
		}
	}

	for _, o := range objects {
		s.objects = append(s.objects, o)
		s.byName[o.Name] = o
		if o.Parent != nil {
			o.Parent.Children = append(o.Parent.Children, o)
		}
	}
	return s, nil
}

func (ms MaterialSpec) build() (*Material, error) {
	if ms.Name == "" {
		return nil, errors.New("material needs a name")
	}
	m := &Material{
		Name:          ms.Name,
		DiffuseColor:  White,
		SpecularColor: White,
		UseNodes:      ms.UseNodes,
	}
	if ms.DiffuseColor != nil {
		m.DiffuseColor = *ms.DiffuseColor
	}
	if ms.SpecularColor != nil {
		m.SpecularColor = *ms.SpecularColor
	}
	m.SpecularIntensity = 0.5
	if ms.SpecularIntensity != nil {
		m.SpecularIntensity = *ms.SpecularIntensity
	}
	mode, err := ParseBlendMode(ms.BlendMethod)
	if err != nil {
		return nil, err
	}
	m.BlendMode = mode

	for i, ns := range ms.Nodes {
		kind, err := ParseNodeKind(ns.Kind)
		if err != nil {
			return nil, errors.Wrapf(err, "node %d", i)
		}
		m.Nodes = append(m.Nodes, ShaderNode{Kind: kind, Color: ns.BaseColor, Alpha: ns.Alpha})
	}
	return m, nil
}

func (spec ObjectSpec) build(dir string, materials map[string]*Material) (*Object, error) {
	if spec.Name == "" {
		return nil, errors.New("object needs a name")
	}
	typ := spec.Type
	if typ == "" {
		typ = "MESH"
	}
	kind, err := ParseObjectKind(typ)
	if err != nil {
		return nil, err
	}

	o := &Object{
		Name:     spec.Name,
		Kind:     kind,
		Scale:    math.V3(1, 1, 1),
		Visible:  true,
		Selected: spec.Selected,
		EditMode: spec.EditMode,
	}
	if spec.Location != nil {
		o.Location = vec(*spec.Location)
	}
	if spec.Rotation != nil {
		o.Rotation = vec(*spec.Rotation)
	}
	if spec.Scale != nil {
		o.Scale = vec(*spec.Scale)
	}
	if spec.Visible != nil {
		o.Visible = *spec.Visible
	}

	for _, name := range spec.Materials {
		if name == "" {
			o.Materials = append(o.Materials, nil)
			continue
		}
		m, ok := materials[name]
		if !ok {
			return nil, errors.Errorf("unknown material %q", name)
		}
		o.Materials = append(o.Materials, m)
	}

	for i, ms := range spec.Modifiers {
		md, err := ms.build()
		if err != nil {
			return nil, errors.Wrapf(err, "modifier %d", i)
		}
		o.Modifiers = append(o.Modifiers, md)
	}

	if kind == KindMesh {
		if spec.Mesh == nil {
			return nil, ErrNoMesh
		}
		m, err := spec.Mesh.build(dir, spec.Name)
		if err != nil {
			return nil, err
		}
		o.Mesh = m
	}
	return o, nil
}

func (ms ModifierSpec) build() (mesh.Modifier, error) {
	kind, err := mesh.ParseModifierKind(ms.Type)
	if err != nil {
		return mesh.Modifier{}, err
	}
	md := mesh.Modifier{Kind: kind, Count: ms.Count, Ratio: ms.Ratio}
	if kind == mesh.ModifierMirror {
		switch strings.ToUpper(ms.Axis) {
		case "", "X":
			md.Axis = 0
		case "Y":
			md.Axis = 1
		case "Z":
			md.Axis = 2
		default:
			return md, errors.Errorf("unknown mirror axis %q", ms.Axis)
		}
	}
	if kind == mesh.ModifierArray && ms.Offset == nil && ms.RelativeOffset == nil {
		md.Relative = math.V3(1, 0, 0)
	}
	if ms.Offset != nil {
		md.Offset = vec(*ms.Offset)
	}
	if ms.RelativeOffset != nil {
		md.Relative = vec(*ms.RelativeOffset)
	}
	return md, md.Validate()
}

func (ms MeshSpec) build(dir, name string) (*mesh.Mesh, error) {
	var (
		m   *mesh.Mesh
		err error
	)
	switch {
	case ms.Primitive != "":
		size := ms.Size
		if size == 0 {
			size = 2
		}
		switch strings.ToLower(ms.Primitive) {
		case "cube":
			m = mesh.Cube(size)
		case "plane":
			m = mesh.Plane(size)
		default:
			return nil, errors.Errorf("unknown primitive %q", ms.Primitive)
		}
	case ms.OBJ != "":
		m, err = mesh.LoadOBJ(resolvePath(dir, ms.OBJ), mesh.OBJOptions{Object: ms.Name, Charset: ms.Encoding})
	case ms.GLTF != "":
		m, err = mesh.LoadGLTF(resolvePath(dir, ms.GLTF), ms.Name)
	case len(ms.Vertices) > 0:
		m = &mesh.Mesh{Faces: ms.Faces}
		for _, v := range ms.Vertices {
			m.Vertices = append(m.Vertices, vec(v))
		}
		err = m.Validate()
	default:
		return nil, errors.New("mesh has no source")
	}
	if err != nil {
		return nil, errors.Wrap(err, "mesh")
	}
	m.Name = name
	return m, nil
}

func resolvePath(dir, p string) string {
	if expanded, err := homedir.Expand(p); err == nil {
		p = expanded
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func vec(a [3]float64) math.Vec3 {
	return math.Vec3{X: a[0], Y: a[1], Z: a[2]}
}

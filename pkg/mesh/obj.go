package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/maznobu/kicadwrl/pkg/encoding"
	"github.com/maznobu/kicadwrl/pkg/math"
)

// OBJ errors.
var (
	ErrOBJSyntax         = errors.New("obj syntax error")
	ErrOBJObjectNotFound = errors.New("obj object not found")
)

// OBJOptions select what LoadOBJ reads.
type OBJOptions struct {
	// Object is the name of the "o" group to read. Empty reads the whole file.
	Object string
	// Charset is the character set of the file; empty means UTF-8.
	Charset string
}

// LoadOBJ reads a Wavefront OBJ file. Polygons are kept as-is; texture
// coordinates, normals and material statements are ignored.
func LoadOBJ(path string, opts OBJOptions) (*Mesh, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r, err := encoding.NewReader(file, opts.Charset)
	if err != nil {
		return nil, err
	}

	var m *Mesh
	if opts.Object != "" {
		m, err = ReadOBJObject(r, opts.Object)
	} else {
		m, err = ReadOBJ(r)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// ReadOBJ parses OBJ geometry from r. All objects are merged; the mesh
// is named after the first one.
func ReadOBJ(r io.Reader) (*Mesh, error) {
	m, _, err := readOBJ(r, "")
	return m, err
}

// ReadOBJObject parses the faces of the object named name. Vertices not
// used by those faces are dropped.
func ReadOBJObject(r io.Reader, name string) (*Mesh, error) {
	all, found, err := readOBJ(r, name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrOBJObjectNotFound, name)
	}

	m := &Mesh{Name: name}
	remap := make(map[int]int)
	for _, f := range all.Faces {
		face := make([]int, len(f))
		for i, v := range f {
			n, ok := remap[v]
			if !ok {
				n = len(m.Vertices)
				remap[v] = n
				m.Vertices = append(m.Vertices, all.Vertices[v])
			}
			face[i] = n
		}
		m.Faces = append(m.Faces, face)
	}
	return m, nil
}

// readOBJ parses r. With a non-empty only, faces outside that object are
// skipped and found reports whether the object was seen.
func readOBJ(r io.Reader, only string) (m *Mesh, found bool, err error) {
	m = &Mesh{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	current := ""

	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "o":
			current = strings.Join(fields[1:], " ")
			if m.Name == "" {
				m.Name = current
			}
			if only != "" && current == only {
				found = true
			}
		case "v":
			if len(fields) < 4 {
				return nil, false, fmt.Errorf("%w: line %d: vertex needs 3 coordinates", ErrOBJSyntax, lineNo)
			}
			var xyz [3]float64
			for i := range xyz {
				f, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, false, fmt.Errorf("%w: line %d: %v", ErrOBJSyntax, lineNo, err)
				}
				xyz[i] = f
			}
			m.Vertices = append(m.Vertices, math.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]})
		case "f":
			if len(fields) < 4 {
				return nil, false, fmt.Errorf("%w: line %d: face needs 3 vertices", ErrOBJSyntax, lineNo)
			}
			face := make([]int, 0, len(fields)-1)
			for _, arg := range fields[1:] {
				idx, err := objIndex(arg, len(m.Vertices))
				if err != nil {
					return nil, false, fmt.Errorf("%w: line %d: %v", ErrOBJSyntax, lineNo, err)
				}
				face = append(face, idx)
			}
			if only != "" && current != only {
				continue
			}
			m.Faces = append(m.Faces, face)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, false, err
	}
	if err := m.Validate(); err != nil {
		return nil, false, err
	}
	return m, found, nil
}

// objIndex converts a 1-based or negative (relative) OBJ vertex reference
// of the form v, v/vt, v//vn or v/vt/vn to a 0-based index.
func objIndex(arg string, count int) (int, error) {
	v, _, _ := strings.Cut(arg, "/")
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("bad vertex reference %q", arg)
	}
	switch {
	case n > 0:
		n--
	case n < 0:
		n += count
	default:
		return 0, fmt.Errorf("vertex reference %q is zero", arg)
	}
	if n < 0 || n >= count {
		return 0, fmt.Errorf("vertex reference %q out of range", arg)
	}
	return n, nil
}

package mesh

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/maznobu/kicadwrl/pkg/math"
)

// LoadGLTF reads triangle primitives from a .gltf or .glb file. When
// meshName is empty every mesh in the document is merged; otherwise only
// the mesh with that name is read. glTF is Y-up, so positions are rotated
// into the Z-up frame used by the scene.
func LoadGLTF(path, meshName string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}

	out := &Mesh{Name: meshName}
	if out.Name == "" {
		out.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	found := false
	for _, gm := range doc.Meshes {
		if meshName != "" && gm.Name != meshName {
			continue
		}
		found = true
		for _, primitive := range gm.Primitives {
			if primitive.Mode != gltf.PrimitiveTriangles {
				continue
			}
			posIdx, ok := primitive.Attributes[gltf.POSITION]
			if !ok {
				continue
			}
			positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("%s: mesh %q: %w", path, gm.Name, err)
			}

			var indices []uint32
			if primitive.Indices != nil {
				indices, err = modeler.ReadIndices(doc, doc.Accessors[*primitive.Indices], nil)
				if err != nil {
					return nil, fmt.Errorf("%s: mesh %q: %w", path, gm.Name, err)
				}
			} else {
				indices = make([]uint32, len(positions))
				for k := range indices {
					indices[k] = uint32(k)
				}
			}

			base := len(out.Vertices)
			for _, p := range positions {
				out.Vertices = append(out.Vertices, math.Vec3{
					X: float64(p[0]),
					Y: -float64(p[2]),
					Z: float64(p[1]),
				})
			}
			for i := 0; i+2 < len(indices); i += 3 {
				out.Faces = append(out.Faces, []int{
					base + int(indices[i]),
					base + int(indices[i+1]),
					base + int(indices[i+2]),
				})
			}
		}
	}
	if !found {
		return nil, fmt.Errorf("%s: mesh %q not found", path, meshName)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

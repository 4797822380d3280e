package scene

import (
	"fmt"
	"strings"
)

// RGB is a linear color triple in [0, 1].
type RGB [3]float64

// White is the base color used when a material has no node color.
var White = RGB{1, 1, 1}

// BlendMode is a material's alpha blend method.
type BlendMode int

const (
	BlendOpaque BlendMode = iota
	BlendClip
	BlendHashed
	BlendAlpha
)

// ParseBlendMode parses a scene-file blend method name.
func ParseBlendMode(s string) (BlendMode, error) {
	switch strings.ToUpper(s) {
	case "", "OPAQUE":
		return BlendOpaque, nil
	case "CLIP":
		return BlendClip, nil
	case "HASHED":
		return BlendHashed, nil
	case "BLEND":
		return BlendAlpha, nil
	}
	return 0, fmt.Errorf("unknown blend method %q", s)
}

// NodeKind is one of the recognized shader node types.
type NodeKind int

const (
	NodeBSDFPrincipled NodeKind = iota + 1
	NodeBSDFDiffuse
	NodeBSDFGlossy
	NodeBSDFGlass
	NodeBSDFTransparent
	NodeEmission
	NodeMixShader
	NodeTexImage
	NodeOutputMaterial
)

var nodeNames = map[NodeKind]string{
	NodeBSDFPrincipled:  "BSDF_PRINCIPLED",
	NodeBSDFDiffuse:     "BSDF_DIFFUSE",
	NodeBSDFGlossy:      "BSDF_GLOSSY",
	NodeBSDFGlass:       "BSDF_GLASS",
	NodeBSDFTransparent: "BSDF_TRANSPARENT",
	NodeEmission:        "EMISSION",
	NodeMixShader:       "MIX_SHADER",
	NodeTexImage:        "TEX_IMAGE",
	NodeOutputMaterial:  "OUTPUT_MATERIAL",
}

// String returns the scene-file name of the node kind.
func (k NodeKind) String() string {
	if s, ok := nodeNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Unknown(%d)", int(k))
}

// IsBSDF reports whether the node is a BSDF shader, the only kind that
// contributes a base color.
func (k NodeKind) IsBSDF() bool {
	return strings.HasPrefix(k.String(), "BSDF_")
}

// ParseNodeKind parses a scene-file node type. Unrecognized kinds are an
// error rather than being silently ignored.
func ParseNodeKind(s string) (NodeKind, error) {
	u := strings.ToUpper(s)
	for k, name := range nodeNames {
		if name == u {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownNodeKind, s)
}

// ShaderNode is a node of a material's shader graph. Color is the node's
// first color input and Alpha its alpha input, when present.
type ShaderNode struct {
	Kind  NodeKind
	Color *RGB
	Alpha *float64
}

// Material is a surface material.
type Material struct {
	Name              string
	DiffuseColor      RGB
	SpecularColor     RGB
	SpecularIntensity float64
	BlendMode         BlendMode
	UseNodes          bool
	Nodes             []ShaderNode
}

// World holds scene-wide lighting settings. AOFactor is nil when the
// world has no light settings.
type World struct {
	AOFactor *float64
}

package export

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/maznobu/kicadwrl/internal/i18n"
	"github.com/maznobu/kicadwrl/internal/scene"
	"github.com/maznobu/kicadwrl/pkg/math"
	"github.com/maznobu/kicadwrl/pkg/mesh"
	"github.com/maznobu/kicadwrl/pkg/vrml"
)

var (
	pointLine = regexp.MustCompile(`(?m)^\t{8}-?1 -?1 -?1,?$`)
	faceLine  = regexp.MustCompile(`(?m)^\t{7}\d+, \d+, \d+, -1,?$`)
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func run(t *testing.T, e *Exporter) *Result {
	t.Helper()
	res, err := e.Run(context.Background())
	require.NoError(t, err)
	return res
}

func TestExportSingleCube(t *testing.T) {
	s := scene.New()
	addMesh(t, s, "Cube", nil, math.Vec3{})
	cfg := testConfig(t)

	res := run(t, newTestExporter(t, s, cfg))
	require.Equal(t, []string{cfg.OutputPath}, res.Files)
	assert.Equal(t, []string{"Finished writing " + cfg.OutputPath + "."}, res.Messages)

	out := readFile(t, cfg.OutputPath)
	head := strings.Join([]string{
		"#VRML V2.0 utf8",
		"#modeled using blender3d http://blender.org",
		"",
		"Group {",
		"\tchildren [",
		"\t\t",
		"\t\t\t# 'Cube' (_Cube)",
		"\t\tTransform {",
		"\t\t\ttranslation 0 0 0",
		"\t\t\trotation 0 0 0 0",
		"\t\t\tscale 0.3937 0.3937 0.3937",
		"\t\t\tchildren [",
		"\t\t\t\tShape {",
		"\t\t\t\t\tappearance Appearance {",
		"\t\t\t\t\t\tmaterial Material {",
		"\t\t\t\t\t\t\t# No material definition.",
		"\t\t\t\t\t\t}",
		"\t\t\t\t\t}",
		"\t\t\t\t\tgeometry IndexedFaceSet {",
		"\t\t\t\t\t\tcoord Coordinate {",
		"\t\t\t\t\t\t\tpoint [",
		"\t\t\t\t\t\t\t\t1 1 1,",
	}, "\n")
	tail := strings.Join([]string{
		"\t\t\t\t\t\t]",
		"\t\t\t\t\t}",
		"\t\t\t\t}",
		"\t\t\t]",
		"\t\t}",
		"\t]",
		"}",
		"",
	}, "\n")

	assert.True(t, strings.HasPrefix(out, head), "unexpected header:\n%s", out)
	assert.True(t, strings.HasSuffix(out, tail), "unexpected trailer:\n%s", out)
	assert.Equal(t, 1, strings.Count(out, "Shape {"))
	assert.Len(t, pointLine.FindAllString(out, -1), 8)
	assert.Len(t, faceLine.FindAllString(out, -1), 12)
	assert.Contains(t, out, "\t\t\t\t\t\t\t\t-1 -1 -1\n\t\t\t\t\t\t\t]")
	assert.Equal(t, 11, strings.Count(out, ", -1,\n"))
}

func TestExportPerOrigin(t *testing.T) {
	s := scene.New()
	addMesh(t, s, "Pin.1", nil, math.V3(5, 0, 0))
	body := addMesh(t, s, "Body", nil, math.V3(0, 0, 0))
	addMesh(t, s, "Body Cap", body, math.V3(0, 0, 1))
	addMesh(t, s, "Pin.0", nil, math.V3(5, 0, 0))

	cfg := testConfig(t)
	cfg.OutputPath = filepath.Join(t.TempDir(), "part__.wrl")

	res := run(t, newTestExporter(t, s, cfg))
	dir := filepath.Dir(cfg.OutputPath)
	want := []string{
		filepath.Join(dir, "part_Pin_0.wrl"),
		filepath.Join(dir, "part_Body.wrl"),
	}
	require.Equal(t, want, res.Files)
	require.Len(t, res.Messages, 3)
	assert.Equal(t, "Finished writing 2 files.", res.Messages[2])
	assert.NoFileExists(t, cfg.OutputPath)

	pins := readFile(t, want[0])
	assert.Contains(t, pins, "# 'Pin.1' (_Pin_1)")
	assert.Contains(t, pins, "# 'Pin.0' (_Pin_0)")
	assert.Regexp(t, `translation 1\.968\d* 0 0\n`, pins)
	assert.Equal(t, 2, strings.Count(pins, "Transform {"))

	bodies := readFile(t, want[1])
	assert.Contains(t, bodies, "# 'Body Cap' (_Body_Cap)")
	assert.Contains(t, bodies, "translation 0 0 0.3937")
}

func TestExportCentered(t *testing.T) {
	s := scene.New()
	parent := addMesh(t, s, "Parent", nil, math.V3(0, 0, 5))
	addMesh(t, s, "Child", parent, math.V3(1, 0, 0))

	cfg := testConfig(t)
	cfg.CenterOrigin = true

	res := run(t, newTestExporter(t, s, cfg))
	require.Equal(t, []string{cfg.OutputPath}, res.Files)
	require.Len(t, res.Messages, 1)

	out := readFile(t, cfg.OutputPath)
	parentAt := strings.Index(out, "# 'Parent'")
	childAt := strings.Index(out, "# 'Child'")
	require.True(t, parentAt >= 0 && childAt > parentAt, "expected Parent before Child")
	assert.Contains(t, out[parentAt:childAt], "translation 0 0 0\n")
	assert.Contains(t, out[childAt:], "translation 0.3937 0 0\n")
	assert.NotContains(t, out, "translation 0 0 1.96")
	// Only the last object closes without a comma.
	assert.Contains(t, out[parentAt:childAt], "\t\t},\n")
	assert.True(t, strings.HasSuffix(out, "\t\t}\n\t]\n}\n"))
}

func TestExportOriginMismatch(t *testing.T) {
	s := scene.New()
	addMesh(t, s, "Left", nil, math.V3(-1, 0, 0))
	addMesh(t, s, "Right", nil, math.V3(1, 0, 0))

	cfg := testConfig(t)
	cfg.CenterOrigin = true

	res, err := newTestExporter(t, s, cfg).Run(context.Background())
	var mismatch *OriginMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Empty(t, res.Files)
	require.Len(t, res.Messages, 1)
	assert.Contains(t, res.Messages[0], `"Left" and "Right"`)
	assert.Contains(t, res.Messages[0], "(-1, 0, 0) and (1, 0, 0)")
	assert.NoFileExists(t, cfg.OutputPath)
}

func TestExportOriginMismatchLargeCoordinates(t *testing.T) {
	s := scene.New()
	addMesh(t, s, "Far", nil, math.V3(1234.5, 0, 0))
	addMesh(t, s, "Near", nil, math.V3(1, 0, 0))

	cfg := testConfig(t)
	cfg.CenterOrigin = true

	res, err := newTestExporter(t, s, cfg).Run(context.Background())
	require.Error(t, err)
	require.Len(t, res.Messages, 1)
	assert.Contains(t, res.Messages[0], "(1234.5, 0, 0) and (1, 0, 0)")
}

func TestExportMaterial(t *testing.T) {
	s := scene.New()
	ao := 0.8
	s.SetWorld(scene.World{AOFactor: &ao})
	obj := addMesh(t, s, "Cube", nil, math.Vec3{})
	obj.Materials = []*scene.Material{
		nil,
		{
			Name:              "Body Mat.1",
			DiffuseColor:      scene.RGB{0.5, 0.5, 0.5},
			SpecularColor:     scene.White,
			SpecularIntensity: 0.5,
		},
		{Name: "Unused"},
	}

	cfg := testConfig(t)
	run(t, newTestExporter(t, s, cfg))

	out := readFile(t, cfg.OutputPath)
	material := strings.Join([]string{
		"\t\t\t\t\t\tmaterial Material {",
		"\t\t\t\t\t\t\t# Material 'Body-Mat_1', _Body_Mat_1",
		"\t\t\t\t\t\t\tdiffuseColor 0.75 0.75 0.75",
		"\t\t\t\t\t\t\temissiveColor 0.45 0.45 0.45",
		"\t\t\t\t\t\t\tspecularColor 1.5 1.5 1.5",
		"\t\t\t\t\t\t\tambientIntensity 0.8",
		"\t\t\t\t\t\t\ttransparency 0",
		"\t\t\t\t\t\t\tshininess 0.5",
		"\t\t\t\t\t\t}",
	}, "\n")
	assert.Contains(t, out, material)
	assert.NotContains(t, out, "Unused")
	assert.NotContains(t, out, "No material definition")
}

func TestExportASCIIIdentifiers(t *testing.T) {
	s := scene.New()
	addMesh(t, s, "部品", nil, math.Vec3{})

	cfg := testConfig(t)
	cfg.ASCIIIdentifiers = true
	run(t, newTestExporter(t, s, cfg))

	assert.Contains(t, readFile(t, cfg.OutputPath), "# '部品' (_90E854C1)")
}

func TestExportAppliesModifiers(t *testing.T) {
	s := scene.New()
	obj := addMesh(t, s, "Cube", nil, math.Vec3{})
	obj.Mesh = mesh.Cube(1)
	obj.Modifiers = []mesh.Modifier{{Kind: mesh.ModifierArray, Count: 2, Relative: math.V3(2, 0, 0)}}
	obj.EditMode = true
	other := addMesh(t, s, "Other", nil, math.V3(0, 0, 0))
	other.Selected = true
	require.NoError(t, s.Activate(other))

	cfg := testConfig(t)
	cfg.ApplyModifiers = true
	run(t, newTestExporter(t, s, cfg))

	out := readFile(t, cfg.OutputPath)
	cube := out[strings.Index(out, "# 'Cube'"):strings.Index(out, "# 'Other'")]
	assert.Equal(t, 16, strings.Count(cube, "\t\t\t\t\t\t\t\t"), "expected 16 array points")
	assert.NotContains(t, out, ".001")

	assert.Zero(t, s.LiveDuplicates())
	assert.Len(t, s.Objects(), 2)
	assert.True(t, obj.EditMode, "edit mode restored")
	assert.Same(t, other, s.Active())
	assert.True(t, other.Selected)
	assert.False(t, obj.Selected)
}

func TestExportEvaluationFailure(t *testing.T) {
	s := scene.New()
	obj := addMesh(t, s, "Broken", nil, math.Vec3{})
	obj.Mesh = nil
	obj.Selected = true

	cfg := testConfig(t)
	cfg.ApplyModifiers = true
	cfg.CenterOrigin = true
	res, err := newTestExporter(t, s, cfg).Run(context.Background())

	require.ErrorIs(t, err, scene.ErrNoMesh)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, cfg.OutputPath, res.Failures[0].Path)
	assert.Empty(t, res.Files)
	assert.NoFileExists(t, cfg.OutputPath)
	assert.Zero(t, s.LiveDuplicates())
	assert.True(t, obj.Selected, "selection restored")
}

func TestExportIOFailure(t *testing.T) {
	s := scene.New()
	addMesh(t, s, "Cube", nil, math.Vec3{})

	cfg := testConfig(t)
	cfg.CenterOrigin = true
	cfg.OutputPath = filepath.Join(t.TempDir(), "missing", "model.wrl")

	res, err := newTestExporter(t, s, cfg).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist), "expected a not-exist error, got %v", err)
	require.Len(t, res.Failures, 1)
	assert.Empty(t, res.Files)
	require.Len(t, res.Messages, 1)
	assert.True(t, strings.HasPrefix(res.Messages[0], "Export failed: "))
}

func TestExportCancelled(t *testing.T) {
	s := scene.New()
	addMesh(t, s, "Cube", nil, math.Vec3{})
	cfg := testConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newTestExporter(t, s, cfg).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Files)
	assert.NoFileExists(t, cfg.OutputPath)
}

func TestExportNothing(t *testing.T) {
	s := scene.New()
	hidden := addMesh(t, s, "Hidden", nil, math.Vec3{})
	hidden.Visible = false

	cfg := testConfig(t)
	res := run(t, newTestExporter(t, s, cfg))
	assert.Empty(t, res.Files)
	assert.Equal(t, []string{"No objects to export."}, res.Messages)
	assert.NoFileExists(t, cfg.OutputPath)
}

func TestExportLocalizedMessages(t *testing.T) {
	s := scene.New()
	addMesh(t, s, "A", nil, math.V3(0, 0, 0))
	addMesh(t, s, "B", nil, math.V3(1, 0, 0))

	printer, err := i18n.New(language.Japanese)
	require.NoError(t, err)
	e, err := New(s, Options{Config: testConfig(t), Printer: printer})
	require.NoError(t, err)

	res := run(t, e)
	require.Len(t, res.Messages, 3)
	assert.Contains(t, res.Messages[0], "の出力を完了しました。")
	assert.Equal(t, "2 個のファイルを出力しました。", res.Messages[2])
}

func TestExportNonMeshPanics(t *testing.T) {
	s := scene.New()
	e := newTestExporter(t, s, testConfig(t))
	empty := &scene.Object{Name: "Empty", Kind: scene.KindEmpty, Scale: math.V3(1, 1, 1)}

	assert.Panics(t, func() {
		_ = e.exportObject(vrml.NewWriter(io.Discard), empty, math.Vec3{}, "")
	})
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.GlobalScale = 0
	_, err := New(scene.New(), Options{Config: cfg})
	assert.Error(t, err)
}

func TestExportSiblingCollision(t *testing.T) {
	s := scene.New()
	addMesh(t, s, "A.1", nil, math.V3(0, 0, 0))
	addMesh(t, s, "A 1", nil, math.V3(3, 0, 0))

	cfg := testConfig(t)
	res := run(t, newTestExporter(t, s, cfg))

	dir := filepath.Dir(cfg.OutputPath)
	want := []string{
		filepath.Join(dir, "model_A_1.wrl"),
		filepath.Join(dir, "model_A_1_2.wrl"),
	}
	require.Equal(t, want, res.Files)
	assert.Contains(t, readFile(t, want[0]), "# 'A.1' (_A_1)")
	assert.Contains(t, readFile(t, want[1]), "# 'A 1' (_A_1)")
}

func TestSiblingPath(t *testing.T) {
	tests := []struct {
		path  string
		name  string
		ascii bool
		want  string
	}{
		{"out/model.wrl", "Body", false, "out/model_Body.wrl"},
		{"out/model_.wrl", "Pin.1", false, "out/model_Pin_1.wrl"},
		{"out/_model.wrl", "a b", false, "out/_model_a_b.wrl"},
		{"model", "Body", false, "model_Body"},
		{"out/model.v2.wrl", "x", false, "out/model.v2_x.wrl"},
		{"out/model.wrl", "部品", true, "out/model_90E854C1.wrl"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := SiblingPath(filepath.FromSlash(tt.path), tt.name, vrml.Sanitizer{ASCII: tt.ascii})
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

// Package export turns eligible scene objects into VRML97 files for the
// KiCad 3D viewer.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/maznobu/kicadwrl/internal/config"
	"github.com/maznobu/kicadwrl/internal/i18n"
	"github.com/maznobu/kicadwrl/internal/scene"
	"github.com/maznobu/kicadwrl/pkg/math"
	"github.com/maznobu/kicadwrl/pkg/vrml"
)

// Host is the scene the exporter reads and, to evaluate modifiers,
// briefly modifies. *scene.Scene implements it.
type Host interface {
	Objects() []*scene.Object
	World() scene.World
	Selection() scene.Selection
	RestoreSelection(scene.Selection)
	Activate(obj *scene.Object) error
	SetEditMode(obj *scene.Object, on bool)
	DuplicateEvaluated() (*scene.Object, error)
	Remove(obj *scene.Object) error
}

// Options configures an Exporter.
type Options struct {
	Config  config.ExportConfig
	Logger  *zap.Logger      // nil disables logging
	Printer *message.Printer // nil uses English messages
}

// Exporter runs exports of one host with one configuration.
type Exporter struct {
	host    Host
	cfg     config.ExportConfig
	log     *zap.Logger
	printer *message.Printer
	local   math.Mat4
	ids     vrml.Sanitizer
}

// FileFailure is an output file that could not be written. Message is
// the localized text also listed in Result.Messages.
type FileFailure struct {
	Path    string
	Err     error
	Message string
}

// Result reports the outcome of a run.
type Result struct {
	Files    []string
	Messages []string
	Failures []FileFailure
}

// New validates opts.Config and returns an Exporter for host.
func New(host Host, opts Options) (*Exporter, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	local, err := LocalTransform(opts.Config)
	if err != nil {
		return nil, err
	}

	e := &Exporter{
		host:    host,
		cfg:     opts.Config,
		log:     opts.Logger,
		printer: opts.Printer,
		local:   local,
		ids:     vrml.Sanitizer{ASCII: opts.Config.ASCIIIdentifiers},
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.printer == nil {
		p, err := i18n.New(language.English)
		if err != nil {
			return nil, fmt.Errorf("load messages: %w", err)
		}
		e.printer = p
	}
	return e, nil
}

// Run groups the host's objects and writes one file per group. An
// origin mismatch in centered mode returns an *OriginMismatchError
// before any file is created. Files that cannot be written are listed
// in Result.Failures, removed, and reported in the returned error; the
// remaining groups are still written. Cancelling ctx stops the run
// between objects.
func (e *Exporter) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	grouping, err := e.Group(e.host.Objects())
	if err != nil {
		var mismatch *OriginMismatchError
		if errors.As(err, &mismatch) {
			res.Messages = append(res.Messages,
				e.printer.Sprintf(i18n.ObjectsWithDifferentOriginsWereFound, mismatch.Args()...))
		}
		return res, err
	}

	groups := grouping.Groups()
	if len(groups) == 0 {
		res.Messages = append(res.Messages, e.printer.Sprintf(i18n.NoEligibleObjects))
		return res, nil
	}

	paths := e.OutputPaths(grouping)
	var errs []error
	for i, g := range groups {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		path := paths[i]
		if err := e.writeFile(ctx, path, g, grouping.Origin); err != nil {
			if ctx.Err() != nil {
				return res, err
			}
			e.log.Error("Export failed", zap.String("file", path), zap.Error(err))
			msg := e.printer.Sprintf(i18n.ExportFailed, err)
			res.Failures = append(res.Failures, FileFailure{Path: path, Err: err, Message: msg})
			res.Messages = append(res.Messages, msg)
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}

		e.log.Info("Wrote file", zap.String("file", path), zap.Int("objects", len(g.Objects)))
		res.Files = append(res.Files, path)
		res.Messages = append(res.Messages, e.printer.Sprintf(i18n.CompletedOutput, path))
	}

	if len(res.Files) > 1 {
		res.Messages = append(res.Messages, e.printer.Sprintf(i18n.CompletedOutputCount, len(res.Files)))
	}
	return res, errors.Join(errs...)
}

// writeFile writes one group to path. A file that was not completely
// written is removed.
func (e *Exporter) writeFile(ctx context.Context, path string, g *OriginGroup, origin math.Vec3) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	w := vrml.NewWriter(f)
	w.EmitLine("#VRML V2.0 utf8", 0)
	w.EmitLine("#modeled using blender3d http://blender.org", 0)
	w.EmitLine("", 0)
	w.EmitLine("Group {", 0)
	w.EmitLine("children [", 0)

	for i, obj := range g.Objects {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.EmitLine("", 0)
		w.EmitLine(fmt.Sprintf("# %s (%s)", vrml.QuoteName(obj.Name), e.ids.ObjectID(obj.Name)), 1)
		if err := e.exportObject(w, obj, origin, separator(i, len(g.Objects))); err != nil {
			return fmt.Errorf("object %q: %w", obj.Name, err)
		}
	}

	w.EmitLine("]", 0)
	w.EmitLine("}", 0)
	return w.Flush()
}

// OutputPaths returns the file each group of g is written to, in the
// order of g.Groups(). A single group keeps the configured path; several
// per-origin groups get sibling paths. A sibling path already taken by
// an earlier group gets a numeric suffix.
func (e *Exporter) OutputPaths(g *Grouping) []string {
	groups := g.Groups()
	paths := make([]string, len(groups))
	used := make(map[string]bool, len(groups))
	for i, grp := range groups {
		paths[i] = e.cfg.OutputPath
		if g.Centered == nil && len(groups) > 1 {
			paths[i] = e.siblingPath(grp)
		}
		if used[paths[i]] {
			taken := paths[i]
			paths[i] = numberedPath(taken, used)
			e.log.Warn("Output file name collision",
				zap.String("file", taken),
				zap.String("renamed", paths[i]))
		}
		used[paths[i]] = true
	}
	return paths
}

// numberedPath returns path with the first _N suffix (N >= 2) before the
// extension that is not in used.
func numberedPath(path string, used map[string]bool) string {
	ext := extPattern.FindString(filepath.Base(path))
	stem := strings.TrimSuffix(path, ext)
	for n := 2; ; n++ {
		p := stem + "_" + strconv.Itoa(n) + ext
		if !used[p] {
			return p
		}
	}
}

var extPattern = regexp.MustCompile(`\.[^.]+$`)

// siblingPath returns the output path of a per-origin group: the
// configured file name with the identifier of the group's
// lexicographically first object name inserted before the extension.
func (e *Exporter) siblingPath(g *OriginGroup) string {
	names := make([]string, len(g.Objects))
	for i, o := range g.Objects {
		names[i] = o.Name
	}
	return SiblingPath(e.cfg.OutputPath, slices.Min(names), e.ids)
}

// SiblingPath returns <dir>/<title>_<id><ext> for path, where title is
// the file stem without trailing underscores and id is the object
// identifier of name without surrounding underscores.
func SiblingPath(path, name string, ids vrml.Sanitizer) string {
	dir, base := filepath.Split(path)
	ext := extPattern.FindString(base)
	title := strings.TrimRight(strings.TrimSuffix(base, ext), "_")
	return filepath.Join(dir, title+"_"+strings.Trim(ids.ObjectID(name), "_")+ext)
}

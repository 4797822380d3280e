package export

import (
	"fmt"
	"strconv"

	"github.com/maznobu/kicadwrl/internal/scene"
	"github.com/maznobu/kicadwrl/pkg/math"
)

// PositionStep is the grid origin positions are rounded to before they
// are compared or used as bucket keys.
const PositionStep = 1e-5

// OriginMismatchError reports two objects bound for one merged output
// whose topmost ancestors sit at different positions.
type OriginMismatchError struct {
	FirstName  string
	SecondName string
	FirstPos   math.Vec3
	SecondPos  math.Vec3
}

func (e *OriginMismatchError) Error() string {
	return fmt.Sprintf("objects with different origins: %q at (%g, %g, %g) and %q at (%g, %g, %g)",
		e.FirstName, e.FirstPos.X, e.FirstPos.Y, e.FirstPos.Z,
		e.SecondName, e.SecondPos.X, e.SecondPos.Y, e.SecondPos.Z)
}

// Args returns the eight message arguments: both names, then both
// positions. Coordinates are preformatted so the printer does not apply
// locale digit grouping to them.
func (e *OriginMismatchError) Args() []any {
	args := []any{e.FirstName, e.SecondName}
	first, second := e.FirstPos.Array(), e.SecondPos.Array()
	for _, v := range append(first[:], second[:]...) {
		args = append(args, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return args
}

// OriginGroup is an ordered, de-duplicated set of objects whose topmost
// ancestors share one position.
type OriginGroup struct {
	Key     math.Vec3
	Objects []*scene.Object

	seen map[*scene.Object]bool
}

func newOriginGroup(key math.Vec3) *OriginGroup {
	return &OriginGroup{Key: key, seen: make(map[*scene.Object]bool)}
}

func (g *OriginGroup) add(objs ...*scene.Object) {
	for _, o := range objs {
		if g.seen[o] {
			continue
		}
		g.seen[o] = true
		g.Objects = append(g.Objects, o)
	}
}

// Grouping is the result of grouping a scene. In centered mode only
// Centered is set and Origin holds the unrounded position of the shared
// topmost ancestor; otherwise only Buckets is set.
type Grouping struct {
	Centered *OriginGroup
	Origin   math.Vec3
	Buckets  []*OriginGroup
}

// Empty reports whether no object was grouped.
func (g *Grouping) Empty() bool {
	return (g.Centered == nil || len(g.Centered.Objects) == 0) && len(g.Buckets) == 0
}

// Groups returns the output groups in order.
func (g *Grouping) Groups() []*OriginGroup {
	if g.Centered != nil {
		if len(g.Centered.Objects) == 0 {
			return nil
		}
		return []*OriginGroup{g.Centered}
	}
	return g.Buckets
}

// IsEligible reports whether obj can be exported: a visible mesh that is
// selected when only the selection is exported, unless allowSelectionSkip.
func (e *Exporter) IsEligible(obj *scene.Object, allowSelectionSkip bool) bool {
	if obj.Kind != scene.KindMesh || !obj.Visible {
		return false
	}
	if e.cfg.SelectionOnly && !allowSelectionSkip && !obj.Selected {
		return false
	}
	return true
}

// Group distributes the eligible objects of the scene. In centered mode
// all of them go into one group whose key is the common ancestor
// position; a second ancestor at another position is an
// *OriginMismatchError. Unselected roots are kept there when
// IncludeChildren is set. Otherwise each object goes into the bucket of
// its topmost ancestor's position.
func (e *Exporter) Group(objects []*scene.Object) (*Grouping, error) {
	g := &Grouping{}
	if e.cfg.CenterOrigin {
		g.Centered = newOriginGroup(math.Vec3{})
	}
	buckets := make(map[math.Vec3]*OriginGroup)

	var firstTop *scene.Object

	for _, obj := range objects {
		// In centered mode an unselected root still counts when its
		// children are fetched.
		rootSkip := g.Centered != nil && obj.Parent == nil && e.cfg.IncludeChildren
		if !e.IsEligible(obj, rootSkip) {
			continue
		}

		top := obj.Root()
		topPos := top.Position()
		key := topPos.Round(PositionStep)

		var members []*scene.Object
		if top != obj && e.IsEligible(top, true) {
			members = append(members, top)
		}
		members = append(members, obj)
		if e.cfg.IncludeChildren {
			for _, d := range obj.Descendants() {
				if e.IsEligible(d, true) {
					members = append(members, d)
				}
			}
		}

		if g.Centered != nil {
			switch {
			case firstTop == nil:
				firstTop = top
				g.Centered.Key, g.Origin = key, topPos
			case top != firstTop && key != g.Centered.Key:
				return nil, &OriginMismatchError{
					FirstName:  firstTop.Name,
					SecondName: top.Name,
					FirstPos:   g.Origin,
					SecondPos:  topPos,
				}
			}
			g.Centered.add(members...)
			continue
		}

		b, ok := buckets[key]
		if !ok {
			b = newOriginGroup(key)
			buckets[key] = b
			g.Buckets = append(g.Buckets, b)
		}
		b.add(members...)
	}
	return g, nil
}

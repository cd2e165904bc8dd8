// Copyright 2025 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sectioning turns routable lines into a directed graph of nodes
// and edges.
package sectioning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/destel/rill"

	"m4o.io/atlas/config"
	"m4o.io/atlas/model"
)

// Stats counts what a sectioning run produced.
type Stats struct {
	SectionedLines int
	Nodes          int
	Edges          int
	ConsumedPoints int
}

type sectioner struct {
	atlas     *model.Atlas
	cfg       config.LoadingOption
	tolerance model.Epsilon
	logger    *slog.Logger

	// intersections and pointAt are built before the parallel phase and
	// only read after. Both are keyed at the tolerance.
	intersections map[model.LocationKey]bool
	pointAt       map[model.LocationKey]model.ID
}

// Section replaces every line carrying one of the configured edge keys by
// the nodes and edges of its sections. Other entities pass through.
func Section(ctx context.Context, atlas *model.Atlas, cfg config.LoadingOption, logger *slog.Logger,
) (*model.Atlas, []*model.FeatureError, Stats, error) {
	s := &sectioner{
		atlas:     atlas,
		cfg:       cfg,
		tolerance: cfg.Tolerance,
		logger:    logger,
	}

	return s.run(ctx)
}

func (s *sectioner) routable(l model.Line) bool {
	return l.Tags.HasAny(s.cfg.EdgeKeys)
}

func (s *sectioner) run(ctx context.Context) (*model.Atlas, []*model.FeatureError, Stats, error) {
	var (
		stats    Stats
		failures []*model.FeatureError
		ways     []model.Line
	)

	b := model.NewBuilder()

	meta := s.atlas.Metadata()
	meta.Sectioned = true

	if err := b.SetMetadata(meta); err != nil {
		return nil, nil, stats, err
	}

	for l := range s.atlas.Lines() {
		if s.routable(l) {
			ways = append(ways, l)

			continue
		}

		if err := b.Add(l); err != nil {
			return nil, nil, stats, err
		}
	}

	s.pointAt = make(map[model.LocationKey]model.ID)

	for p := range s.atlas.Points() {
		if _, ok := s.pointAt[s.key(p.Location)]; !ok {
			s.pointAt[s.key(p.Location)] = p.ID
		}
	}

	s.intersections = s.findIntersections(ways)

	sectioned, err := parallel(ctx, ways, s.cfg.Workers, s.sectionWay)
	if err != nil {
		return nil, nil, stats, fmt.Errorf("sectioning ways: %w", err)
	}

	var (
		edges    = make(map[model.ID][]model.ID)
		nodes    = make(map[model.ID]model.Node)
		consumed = make(map[model.LocationKey]bool)
	)

	for _, sw := range sectioned {
		if sw.failure != nil {
			failures = append(failures, sw.failure)

			if err := b.Add(sw.line); err != nil {
				return nil, nil, stats, err
			}

			continue
		}

		stats.SectionedLines++

		for _, l := range sw.locations {
			consumed[s.key(l)] = true
		}

		for _, l := range sw.boundaries {
			id := s.nodeID(l)
			if _, ok := nodes[id]; !ok {
				nodes[id] = s.node(id, l, sw.line)
			}
		}

		for _, e := range sw.edges {
			edges[sw.line.ID] = append(edges[sw.line.ID], e.ID)
			stats.Edges++

			if err := b.Add(e); err != nil {
				return nil, nil, stats, err
			}
		}
	}

	for _, id := range model.SortedKeys(nodes) {
		stats.Nodes++

		if err := b.Add(nodes[id]); err != nil {
			return nil, nil, stats, err
		}
	}

	points := make(map[model.ID]bool)
	members := pointMembers(s.atlas)

	for p := range s.atlas.Points() {
		if _, ok := nodes[p.ID]; ok {
			continue
		}

		if len(p.Tags) == 0 && !members[p.ID] && consumed[s.key(p.Location)] {
			stats.ConsumedPoints++

			continue
		}

		points[p.ID] = true

		if err := b.Add(p); err != nil {
			return nil, nil, stats, err
		}
	}

	r := remapper{atlas: s.atlas, edges: edges, nodes: nodes, points: points}

	relations, broken := r.remap()
	failures = append(failures, broken...)

	for _, rel := range relations {
		if err := b.Add(rel); err != nil {
			return nil, nil, stats, err
		}
	}

	for n := range s.atlas.Nodes() {
		if made, ok := nodes[n.ID]; ok {
			if s.key(made.Location) != s.key(n.Location) {
				failures = append(failures, model.NewFeatureError(model.ErrIDCollision, model.NODE, n.ID,
					"node at %s is replaced by the node sectioned at %s", n.Location, made.Location))
			}

			continue
		}

		if err := b.Add(n); err != nil {
			return nil, nil, stats, err
		}
	}

	for e := range s.atlas.Edges() {
		if err := b.Add(e); err != nil {
			return nil, nil, stats, err
		}
	}

	for _, f := range failures {
		s.logger.Debug("feature not sectioned", "error", f)
	}

	a, err := b.Freeze()
	if err != nil {
		return nil, nil, stats, err
	}

	return a, failures, stats, nil
}

// node materializes the node at l. A node named after a point takes the
// point's tags, otherwise it inherits the country of the line.
func (s *sectioner) node(id model.ID, l model.Location, line model.Line) model.Node {
	if p, ok := s.atlas.Point(id); ok && s.key(p.Location) == s.key(l) {
		return model.Node{ID: id, Location: p.Location, Tags: p.Tags.Clone()}
	}

	var tags model.Tags
	if code, ok := line.Tags[model.TagISOCountryCode]; ok {
		tags = model.Tags{model.TagISOCountryCode: code}
	}

	return model.Node{ID: id, Location: l, Tags: tags}
}

// findIntersections returns the locations where ways must be cut: shared
// locations, self-intersections, way ends and barriers.
func (s *sectioner) findIntersections(ways []model.Line) map[model.LocationKey]bool {
	shared := make(map[model.LocationKey]int)
	cuts := make(map[model.LocationKey]bool)

	for _, w := range ways {
		locs := model.CollapseDuplicates(w.Locations, s.tolerance)
		if len(locs) < 2 {
			continue
		}

		last := len(locs) - 1
		closed := last > 1 && locs[0].EqualWithin(locs[last], s.tolerance)
		seen := make(map[model.LocationKey]bool, len(locs))

		for i, l := range locs {
			if closed && i == last {
				break
			}

			k := s.key(l)
			if seen[k] {
				cuts[k] = true

				continue
			}

			seen[k] = true
			shared[k]++
		}

		cuts[s.key(locs[0])] = true
		cuts[s.key(locs[last])] = true
	}

	for k, n := range shared {
		if n > 1 {
			cuts[k] = true
		}
	}

	for p := range s.atlas.Points() {
		if p.Tags.HasAny(s.cfg.BarrierKeys) {
			cuts[s.key(p.Location)] = true
		}
	}

	return cuts
}

// key quantizes l to the tolerance; locations sharing a key share a node.
func (s *sectioner) key(l model.Location) model.LocationKey {
	return l.KeyWithin(s.tolerance)
}

func pointMembers(a *model.Atlas) map[model.ID]bool {
	members := make(map[model.ID]bool)

	for r := range a.Relations() {
		for _, m := range r.Members {
			if m.Type == model.POINT {
				members[m.ID] = true
			}
		}
	}

	return members
}

// parallel maps f over the ways with n workers, preserving order.
func parallel[A, B any](ctx context.Context, items []A, n int, f func(A) B) ([]B, error) {
	out := rill.OrderedMap(rill.FromSlice(items, nil), max(n, 1), func(a A) (B, error) {
		if err := ctx.Err(); err != nil {
			var zero B

			return zero, err
		}

		return f(a), nil
	})

	return rill.ToSlice(out)
}

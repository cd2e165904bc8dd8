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

package sectioning

import (
	"slices"
	"strings"

	"m4o.io/atlas/model"
)

// travel is the set of directions a way can be driven in.
type travel int

const (
	bidirectional travel = iota
	forwardOnly
	backwardOnly
)

func travelOf(tags model.Tags) travel {
	switch strings.ToLower(tags.Get(model.TagOneway)) {
	case "yes", "true", "1":
		return forwardOnly
	case "-1", "reverse":
		return backwardOnly
	case "no", "false", "0", "reversible", "alternating":
		return bidirectional
	}

	if tags.Get(model.TagJunction) == model.JunctionRoundabout {
		return forwardOnly
	}

	return bidirectional
}

// span is a section of a way, from and to being indices into its
// locations.
type span struct {
	from, to int
}

// sectionedWay is the outcome of sectioning one way.
type sectionedWay struct {
	line       model.Line
	locations  []model.Location
	boundaries []model.Location
	edges      []model.Edge
	failure    *model.FeatureError
}

func (s *sectioner) sectionWay(l model.Line) sectionedWay {
	result := sectionedWay{line: l}

	if l.ID <= 0 {
		result.failure = model.NewFeatureError(model.ErrGeometry, model.LINE, l.ID, "edge ids need a positive line id")

		return result
	}

	locs := model.CollapseDuplicates(l.Locations, s.tolerance)
	if !model.HasDistinct(locs, 2, s.tolerance) {
		result.failure = model.NewFeatureError(model.ErrGeometry, model.LINE, l.ID, "fewer than two distinct locations")

		return result
	}

	spans := s.sections(locs)
	if len(spans) > model.MaxSubIndex {
		result.failure = model.NewFeatureError(model.ErrGeometry, model.LINE, l.ID,
			"%d sections exceed the limit of %d", len(spans), model.MaxSubIndex)

		return result
	}

	result.locations = locs
	dir := travelOf(l.Tags)

	for i, sp := range spans {
		if i == 0 {
			result.boundaries = append(result.boundaries, locs[sp.from])
		}

		result.boundaries = append(result.boundaries, locs[sp.to])

		id, _ := model.SubID(l.ID, i+1)
		if s.edgeTaken(id, dir) {
			return sectionedWay{line: l, failure: model.NewFeatureError(model.ErrIDCollision, model.LINE, l.ID,
				"edge id %d is taken by another edge", id)}
		}

		geometry := slices.Clone(locs[sp.from : sp.to+1])
		start, end := s.nodeID(locs[sp.from]), s.nodeID(locs[sp.to])

		switch dir {
		case forwardOnly:
			result.edges = append(result.edges, model.Edge{
				ID: id, Locations: geometry, Start: start, End: end, Tags: l.Tags, Direction: model.Forward,
			})
		case backwardOnly:
			result.edges = append(result.edges, model.Edge{
				ID: id, Locations: model.Reversed(geometry), Start: end, End: start, Tags: l.Tags, Direction: model.Backward,
			})
		case bidirectional:
			result.edges = append(result.edges,
				model.Edge{
					ID: id, Locations: geometry, Start: start, End: end, Tags: l.Tags,
					Direction: model.Forward, Opposite: -id,
				},
				model.Edge{
					ID: -id, Locations: model.Reversed(geometry), Start: end, End: start, Tags: l.Tags,
					Direction: model.Backward, Opposite: id,
				})
		}
	}

	return result
}

// sections cuts a way at its boundaries. A section starting and ending at
// the same location is split again at its middle index so that every
// section links two distinct nodes.
func (s *sectioner) sections(locs []model.Location) []span {
	last := len(locs) - 1
	marks := []int{0}

	for i := 1; i < last; i++ {
		if s.intersections[s.key(locs[i])] {
			marks = append(marks, i)
		}
	}

	marks = append(marks, last)

	spans := make([]span, 0, len(marks))

	for i := 0; i+1 < len(marks); i++ {
		sp := span{from: marks[i], to: marks[i+1]}

		if sp.to-sp.from >= 2 && locs[sp.from].EqualWithin(locs[sp.to], s.tolerance) {
			mid := (sp.from + sp.to) / 2
			spans = append(spans, span{from: sp.from, to: mid}, span{from: mid, to: sp.to})

			continue
		}

		spans = append(spans, sp)
	}

	return spans
}

// edgeTaken reports whether the input already holds an edge with the ID of
// a section, or of its reverse.
func (s *sectioner) edgeTaken(id model.ID, dir travel) bool {
	if _, ok := s.atlas.Edge(id); ok {
		return true
	}

	_, ok := s.atlas.Edge(-id)

	return ok && dir == bidirectional
}

// nodeID names the node at l after the lowest ID point within tolerance, or
// after the location itself.
func (s *sectioner) nodeID(l model.Location) model.ID {
	k := s.key(l)

	if id, ok := s.pointAt[k]; ok {
		return id
	}

	return model.LocationID(k.At(s.tolerance))
}

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

package slicing

import (
	"m4o.io/atlas/internal/geometry"
	"m4o.io/atlas/model"
)

// maxPieces leaves the sub IDs from 900 up for border-closing lines.
const maxPieces = 899

// piece is a country-homogeneous part of a sliced line.
type piece struct {
	id        model.ID
	country   string
	locations []model.Location
}

// slicedLine is the outcome of cutting one line along the borders.
type slicedLine struct {
	line   model.Line
	closed bool
	pieces []piece

	// cuts holds the locations where an open line changes country.
	cuts []model.Location

	failure *model.FeatureError
}

func (s *slicer) sliceLine(l model.Line) slicedLine {
	result := slicedLine{line: l}

	locs := model.CollapseDuplicates(l.Locations, s.tolerance)
	if !model.HasDistinct(locs, 2, s.tolerance) {
		result.failure = model.NewFeatureError(model.ErrGeometry, model.LINE, l.ID,
			"fewer than two distinct locations")

		return result
	}

	result.closed = len(locs) > 3 && locs[0].EqualWithin(locs[len(locs)-1], s.tolerance)

	seq, cut := s.markCrossings(locs)

	var cuts []int
	if result.closed {
		seq, cuts = rotate(seq, cut)
	} else {
		for i := 1; i+1 < len(seq); i++ {
			if cut[i] {
				cuts = append(cuts, i)
			}
		}
	}

	var pieces []piece

	for _, part := range geometry.Split(seq, cuts) {
		part = model.CollapseDuplicates(part, s.tolerance)
		if len(part) < 2 {
			continue
		}

		country := s.countryOf(part[0].Midpoint(part[1]))

		if n := len(pieces); n > 0 && pieces[n-1].country == country {
			pieces[n-1].locations = append(pieces[n-1].locations, part[1:]...)

			continue
		}

		pieces = append(pieces, piece{country: country, locations: part})
	}

	// the rotated ring starts at a border, which may not be a real crossing
	if n := len(pieces); result.closed && n > 1 && pieces[0].country == pieces[n-1].country {
		pieces[0].locations = append(pieces[n-1].locations, pieces[0].locations[1:]...)
		pieces = pieces[:n-1]
	}

	if len(pieces) == 1 {
		pieces[0].id = l.ID
		pieces[0].locations = locs
		result.pieces = pieces

		return result
	}

	if len(pieces) > maxPieces {
		result.failure = model.NewFeatureError(model.ErrGeometry, model.LINE, l.ID,
			"%d pieces exceed the limit of %d", len(pieces), maxPieces)

		return result
	}

	for i := range pieces {
		pieces[i].id, _ = model.SubID(l.ID, i+1)

		if _, ok := s.atlas.Line(pieces[i].id); ok {
			result.failure = model.NewFeatureError(model.ErrIDCollision, model.LINE, l.ID,
				"piece id %d is taken by another line", pieces[i].id)

			return result
		}

		if i > 0 && !result.closed {
			result.cuts = append(result.cuts, pieces[i].locations[0])
		}
	}

	result.pieces = pieces

	return result
}

// markCrossings inserts the border crossings of every segment into the
// polyline and flags the locations the line must be cut at.
func (s *slicer) markCrossings(locs []model.Location) ([]model.Location, []bool) {
	seq := []model.Location{locs[0]}
	cut := []bool{false}

	for i := 0; i+1 < len(locs); i++ {
		a, b := locs[i], locs[i+1]
		cutAtB := false

		for _, c := range s.boundaries.Crossings(a, b, s.tolerance) {
			last := len(seq) - 1

			switch {
			case c.Location.EqualWithin(seq[last], s.tolerance):
				cut[last] = true
			case c.Location.EqualWithin(b, s.tolerance):
				cutAtB = true
			default:
				seq = append(seq, c.Location)
				cut = append(cut, true)
			}
		}

		seq = append(seq, b)
		cut = append(cut, cutAtB)
	}

	return seq, cut
}

// rotate restarts a closed polyline at its first cut and returns the
// interior cut indices of the rotated ring.
func rotate(seq []model.Location, cut []bool) ([]model.Location, []int) {
	n := len(seq) - 1
	ring := seq[:n]
	flags := cut[:n]
	flags[0] = flags[0] || cut[n]

	start := -1

	for i, f := range flags {
		if f {
			start = i

			break
		}
	}

	if start < 0 {
		return seq, nil
	}

	rotated := make([]model.Location, 0, n+1)
	rotated = append(rotated, ring[start:]...)
	rotated = append(rotated, ring[:start]...)
	rotated = append(rotated, ring[start])

	var cuts []int

	for i := 1; i < n; i++ {
		if flags[(start+i)%n] {
			cuts = append(cuts, i)
		}
	}

	return rotated, cuts
}

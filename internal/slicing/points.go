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
	"m4o.io/atlas/model"
)

// slicePoints tags the retained points with their country and creates a
// point at every border crossing of an open line that has none.
//
// An untagged point that no relation refers to is kept only as a shape
// location of an open line; areal geometry is carried by its line alone.
// Untagged points stacked on a lower ID point are folded into it.
func (s *slicer) slicePoints(sliced []slicedLine) ([]model.Point, int, []*model.FeatureError) {
	members := make(map[model.ID]bool)

	for r := range s.atlas.Relations() {
		for _, m := range r.Members {
			if m.Type == model.POINT {
				members[m.ID] = true
			}
		}
	}

	shape := make(map[model.LocationKey]bool)

	for _, sl := range sliced {
		if sl.closed || sl.line.IsClosed() {
			continue
		}

		for _, l := range sl.line.Locations {
			shape[l.Key()] = true
		}
	}

	var points []model.Point

	for p := range s.atlas.Points() {
		if len(p.Tags) == 0 && !members[p.ID] {
			if !shape[p.Location.Key()] {
				continue
			}

			if at := s.atlas.PointsAt(p.Location); at[0].ID != p.ID {
				continue
			}
		}

		country := s.countryOf(p.Location)
		s.points[p.ID] = country

		points = append(points, model.Point{
			ID:       p.ID,
			Location: p.Location,
			Tags:     p.Tags.With(model.TagISOCountryCode, country),
		})
	}

	var (
		seen      = make(map[model.LocationKey]bool)
		synthetic = 0
		failures  []*model.FeatureError
	)

	for _, sl := range sliced {
		for k, c := range sl.cuts {
			if seen[c.Key()] || len(s.atlas.PointsAt(c)) > 0 {
				continue
			}

			seen[c.Key()] = true

			id, _ := model.SubID(sl.line.ID, k+1)
			if _, ok := s.atlas.Point(id); ok {
				failures = append(failures, model.NewFeatureError(model.ErrIDCollision, model.POINT, id,
					"boundary point of line %d at %s collides with an existing point", sl.line.ID, c))

				continue
			}

			synthetic++

			points = append(points, model.Point{
				ID:       id,
				Location: c,
				Tags: model.Tags{
					model.TagSyntheticBoundaryNode: model.Yes,
					model.TagISOCountryCode:        s.countryOf(c),
				},
			})
		}
	}

	return points, synthetic, failures
}

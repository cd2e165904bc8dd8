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
	"math"
	"slices"

	"m4o.io/atlas/internal/geometry"
	"m4o.io/atlas/model"
)

const (
	// closingBase is the first sub index of the border-closing lines of a
	// relation.
	closingBase = maxPieces + 1

	// borderSlack scales the tolerance into the distance under which a
	// location counts as lying on a border.
	borderSlack = 10
)

var ringRoles = []string{model.RoleOuter, model.RoleInner}

type ringMember struct {
	line model.ID
	role string
}

func ringRole(role string) (string, bool) {
	switch role {
	case model.RoleOuter, "":
		return model.RoleOuter, true
	case model.RoleInner:
		return model.RoleInner, true
	default:
		return "", false
	}
}

// repairMultiPolygon emits one relation per country, each holding that
// country's ring pieces. Rings left open by the cut are closed along the
// border of the country.
func (s *slicer) repairMultiPolygon(r model.Relation, countries []string) slicedRelation {
	rings, nested := s.gatherRings(r)

	var (
		result  slicedRelation
		closing = make([][]model.Member, len(countries))
		next    = closingBase
		failure *model.FeatureError
	)

	for i, c := range countries {
		var members []model.Member

		for _, m := range r.Members {
			if _, ok := ringRole(m.Role); ok && m.Type == model.LINE {
				continue
			}

			if m.Type == model.RELATION && nested[m.ID] {
				continue
			}

			members = append(members, s.memberCopies(m, c, i == 0)...)
		}

		for _, role := range ringRoles {
			var parts []geometry.Piece

			for _, rm := range rings {
				if rm.role != role {
					continue
				}

				for _, p := range s.lines[rm.line].pieces {
					if p.country == c {
						parts = append(parts, geometry.Piece{ID: p.id, Locations: p.locations})
					}

					if p.country == c || (i == 0 && p.country == model.CountryUnresolved) {
						members = append(members, model.Member{Type: model.LINE, ID: p.id, Role: role})
					}
				}
			}

			if failure != nil {
				continue
			}

			lines, err := s.closeChains(r.ID, c, geometry.Stitch(parts, s.tolerance), &next)
			if err != nil {
				failure = err

				continue
			}

			for _, l := range lines {
				closing[i] = append(closing[i], model.Member{Type: model.LINE, ID: l.ID, Role: role})
			}

			result.closing = append(result.closing, lines...)
		}

		result.relations = append(result.relations, model.Relation{
			ID:      s.copyID(r.ID, i),
			Members: members,
			Tags:    r.Tags.With(model.TagISOCountryCode, c),
		})
	}

	if failure != nil {
		result.closing = nil
		result.failures = []*model.FeatureError{failure}

		for i := range result.relations {
			result.relations[i].Tags[model.TagSyntheticInvalidMultiPolygon] = model.Yes
		}

		return result
	}

	for i := range result.relations {
		result.relations[i].Members = append(result.relations[i].Members, closing[i]...)
	}

	return result
}

// gatherRings collects the ring lines of a relation, directly and through
// nested relations. The second result names the direct relation members
// that contributed rings.
func (s *slicer) gatherRings(r model.Relation) ([]ringMember, map[model.ID]bool) {
	var rings []ringMember

	nested := make(map[model.ID]bool)
	seen := map[model.ID]bool{r.ID: true}

	var walk func(rel model.Relation) bool

	walk = func(rel model.Relation) bool {
		found := false

		for _, m := range rel.Members {
			switch m.Type {
			case model.LINE:
				if role, ok := ringRole(m.Role); ok {
					rings = append(rings, ringMember{line: m.ID, role: role})
					found = true
				}
			case model.RELATION:
				if seen[m.ID] {
					continue
				}

				seen[m.ID] = true

				if child, ok := s.atlas.Relation(m.ID); ok && walk(child) {
					found = true

					if rel.ID == r.ID {
						nested[m.ID] = true
					}
				}
			case model.POINT, model.NODE, model.EDGE:
			}
		}

		return found
	}

	walk(r)

	return rings, nested
}

// closeChains links the open chains of a country into rings with lines
// following the country border. Each chain end is joined to the nearest
// chain start along the border.
func (s *slicer) closeChains(relation model.ID, country string, chains []*geometry.Chain, next *int) ([]model.Line, *model.FeatureError) {
	var open []*geometry.Chain

	for _, c := range chains {
		if !c.Closed(s.tolerance) {
			open = append(open, c)
		}
	}

	maxDistance := float64(s.tolerance) * borderSlack

	var lines []model.Line

	for len(open) > 0 {
		first := open[0]
		open = open[1:]
		current := first

		for {
			end := current.Last()

			best, reverse := -1, false
			path, ok := s.boundaries.BorderPath(country, end, first.First(), maxDistance)
			length := math.Inf(1)

			if ok {
				length = model.Length(path)
			}

			for j, c := range open {
				for _, rev := range []bool{false, true} {
					target := c.First()
					if rev {
						target = c.Last()
					}

					p, ok := s.boundaries.BorderPath(country, end, target, maxDistance)
					if ok && model.Length(p) < length {
						best, reverse, path, length = j, rev, p, model.Length(p)
					}
				}
			}

			if path == nil {
				return nil, model.NewFeatureError(model.ErrTopologyRepair, model.RELATION, relation,
					"ring in %s ends at %s away from the border", country, end)
			}

			if len(path) > 1 {
				if *next > model.MaxSubIndex {
					return nil, model.NewFeatureError(model.ErrTopologyRepair, model.RELATION, relation,
						"too many border-closing lines")
				}

				id, _ := model.SubID(relation, *next)
				*next++

				if _, taken := s.atlas.Line(id); taken {
					return nil, model.NewFeatureError(model.ErrIDCollision, model.RELATION, relation,
						"border-closing line id %d is taken by another line", id)
				}

				lines = append(lines, model.Line{
					ID:        id,
					Locations: path,
					Tags: model.Tags{
						model.TagSyntheticBoundaryLine: model.Yes,
						model.TagISOCountryCode:        country,
					},
				})
			}

			if best < 0 {
				break
			}

			current = open[best]
			open = slices.Delete(open, best, best+1)

			if reverse {
				current.Reverse()
			}
		}
	}

	return lines, nil
}

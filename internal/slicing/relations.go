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
	"strings"

	"m4o.io/atlas/model"
)

// slicedRelation is the outcome of slicing one relation.
type slicedRelation struct {
	relations []model.Relation
	closing   []model.Line
	failures  []*model.FeatureError
}

func (s *slicer) sliceRelation(r model.Relation) slicedRelation {
	countries := s.countries[r.ID]

	if len(countries) == 0 {
		reason := "no member inside a recognized country"
		if s.cyclic[r.ID] {
			reason = "relation membership forms a cycle"
		}

		return slicedRelation{
			relations: []model.Relation{{
				ID:      r.ID,
				Members: s.remapAll(r.Members),
				Tags:    r.Tags.With(model.TagISOCountryCode, model.CountryUnresolved),
			}},
			failures: []*model.FeatureError{
				model.NewFeatureError(model.ErrCountryResolution, model.RELATION, r.ID, "%s", reason),
			},
		}
	}

	if s.collided[r.ID] {
		return slicedRelation{
			relations: []model.Relation{{
				ID:      r.ID,
				Members: s.remapAll(r.Members),
				Tags:    r.Tags.With(model.TagISOCountryCode, strings.Join(countries, ",")),
			}},
			failures: []*model.FeatureError{
				model.NewFeatureError(model.ErrIDCollision, model.RELATION, r.ID,
					"copies for %s collide with existing relations", strings.Join(countries, ",")),
			},
		}
	}

	if s.cfg.MultiPolygonRepair && r.IsMultiPolygon() {
		return s.repairMultiPolygon(r, countries)
	}

	result := slicedRelation{relations: make([]model.Relation, 0, len(countries))}

	for i, c := range countries {
		var members []model.Member
		for _, m := range r.Members {
			members = append(members, s.memberCopies(m, c, i == 0)...)
		}

		result.relations = append(result.relations, model.Relation{
			ID:      s.copyID(r.ID, i),
			Members: members,
			Tags:    r.Tags.With(model.TagISOCountryCode, c),
		})
	}

	return result
}

// remapAll replaces every member by all of its sliced successors.
func (s *slicer) remapAll(members []model.Member) []model.Member {
	var remapped []model.Member

	for _, m := range members {
		switch m.Type {
		case model.LINE:
			if sl, ok := s.lines[m.ID]; ok {
				for _, p := range sl.pieces {
					remapped = append(remapped, model.Member{Type: model.LINE, ID: p.id, Role: m.Role})
				}

				continue
			}
		case model.RELATION:
			if codes := s.countries[m.ID]; len(codes) > 1 && !s.collided[m.ID] {
				for i := range codes {
					remapped = append(remapped, model.Member{Type: model.RELATION, ID: s.copyID(m.ID, i), Role: m.Role})
				}

				continue
			}
		case model.POINT, model.NODE, model.EDGE:
		}

		remapped = append(remapped, m)
	}

	return remapped
}

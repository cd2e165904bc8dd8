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
	"fmt"
	"slices"

	"m4o.io/atlas/model"
)

// remapper rewrites relation members to the entities that replaced them.
type remapper struct {
	atlas  *model.Atlas
	edges  map[model.ID][]model.ID // sectioned line -> its edges
	nodes  map[model.ID]model.Node
	points map[model.ID]bool // points carried to the output
}

// remap returns the relations whose members all survived, with members
// pointing at the new entities. A relation losing a member is dropped,
// and so is every relation referring to it.
func (r remapper) remap() ([]model.Relation, []*model.FeatureError) {
	var (
		relations = slices.Collect(r.atlas.Relations())
		dropped   = make(map[model.ID]bool)
		failures  []*model.FeatureError
	)

	for changed := true; changed; {
		changed = false

		for _, rel := range relations {
			if dropped[rel.ID] {
				continue
			}

			for _, m := range rel.Members {
				if _, ok := r.member(m, dropped); ok {
					continue
				}

				dropped[rel.ID] = true
				changed = true

				failures = append(failures, model.NewFeatureError(model.ErrReferenceIntegrity, model.RELATION, rel.ID,
					"member %s is missing from the output", describe(m)))

				break
			}
		}
	}

	out := make([]model.Relation, 0, len(relations)-len(dropped))

	for _, rel := range relations {
		if dropped[rel.ID] {
			continue
		}

		members := make([]model.Member, 0, len(rel.Members))

		for _, m := range rel.Members {
			mapped, _ := r.member(m, dropped)
			members = append(members, mapped...)
		}

		out = append(out, model.Relation{ID: rel.ID, Members: members, Tags: rel.Tags})
	}

	return out, failures
}

func (r remapper) member(m model.Member, dropped map[model.ID]bool) ([]model.Member, bool) {
	keep := []model.Member{m}

	switch m.Type {
	case model.LINE:
		if ids, ok := r.edges[m.ID]; ok {
			mapped := make([]model.Member, 0, len(ids))
			for _, id := range ids {
				mapped = append(mapped, model.Member{Type: model.EDGE, ID: id, Role: m.Role})
			}

			return mapped, true
		}

		_, ok := r.atlas.Line(m.ID)

		return keep, ok
	case model.POINT:
		if _, ok := r.nodes[m.ID]; ok {
			return []model.Member{{Type: model.NODE, ID: m.ID, Role: m.Role}}, true
		}

		return keep, r.points[m.ID]
	case model.RELATION:
		_, ok := r.atlas.Relation(m.ID)

		return keep, ok && !dropped[m.ID]
	case model.NODE:
		_, ok := r.atlas.Node(m.ID)

		return keep, ok
	case model.EDGE:
		_, ok := r.atlas.Edge(m.ID)

		return keep, ok
	default:
		return nil, false
	}
}

func describe(m model.Member) string {
	if m.Type < model.POINT || m.Type > model.EDGE {
		return fmt.Sprintf("%d:%d:%s", int32(m.Type), m.ID, m.Role)
	}

	return m.String()
}

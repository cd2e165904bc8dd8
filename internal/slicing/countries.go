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
	"fmt"
	"slices"

	"m4o.io/atlas/model"
)

// resolveCountries computes the countries of every relation. Relations
// form a DAG through their relation members; each is visited once and
// memoized. A relation on a cycle, or without any member inside a
// recognized country, resolves to no country at all.
func (s *slicer) resolveCountries() {
	s.countries = make(map[model.ID][]string)
	s.cyclic = make(map[model.ID]bool)

	var stack []model.ID

	onStack := make(map[model.ID]int)

	var visit func(id model.ID) []string

	visit = func(id model.ID) []string {
		if codes, ok := s.countries[id]; ok {
			return codes
		}

		if i, ok := onStack[id]; ok {
			for _, r := range stack[i:] {
				s.cyclic[r] = true
			}

			return nil
		}

		r, ok := s.atlas.Relation(id)
		if !ok {
			return nil
		}

		onStack[id] = len(stack)
		stack = append(stack, id)

		set := make(map[string]bool)

		for _, m := range r.Members {
			for _, c := range s.memberCountries(m, visit) {
				if c != model.CountryUnresolved {
					set[c] = true
				}
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, id)

		var codes []string
		if !s.cyclic[id] {
			codes = model.SortedKeys(set)
		}

		s.countries[id] = codes

		return codes
	}

	for r := range s.atlas.Relations() {
		visit(r.ID)
	}

	s.collided = make(map[model.ID]bool)

	for id, codes := range s.countries {
		if len(codes) < 2 {
			continue
		}

		for i := range codes {
			sub, err := model.SubID(id, i+1)
			if _, taken := s.atlas.Relation(sub); err != nil || taken {
				s.collided[id] = true

				break
			}
		}
	}
}

func (s *slicer) memberCountries(m model.Member, visit func(model.ID) []string) []string {
	switch m.Type {
	case model.POINT:
		if c, ok := s.points[m.ID]; ok {
			return []string{c}
		}
	case model.LINE:
		var codes []string
		for _, p := range s.lines[m.ID].pieces {
			codes = append(codes, p.country)
		}

		return codes
	case model.RELATION:
		return visit(m.ID)
	case model.NODE:
		if n, ok := s.atlas.Node(m.ID); ok {
			return []string{n.Tags.Country()}
		}
	case model.EDGE:
		if e, ok := s.atlas.Edge(m.ID); ok {
			return []string{e.Tags.Country()}
		}
	default:
		panic(fmt.Sprintf("unknown member type %d", int32(m.Type)))
	}

	return nil
}

// memberCopies rewrites a member for the copy of its relation in country.
// Members without a country, or missing from the atlas, go to the first
// copy.
func (s *slicer) memberCopies(m model.Member, country string, first bool) []model.Member {
	keep := func(c string) bool {
		return c == country || (first && c == model.CountryUnresolved)
	}

	switch m.Type {
	case model.POINT:
		if c, ok := s.points[m.ID]; ok {
			if keep(c) {
				return []model.Member{m}
			}

			return nil
		}
	case model.LINE:
		if sl, ok := s.lines[m.ID]; ok {
			var members []model.Member

			for _, p := range sl.pieces {
				if keep(p.country) {
					members = append(members, model.Member{Type: model.LINE, ID: p.id, Role: m.Role})
				}
			}

			return members
		}
	case model.RELATION:
		codes := s.countries[m.ID]

		switch {
		case len(codes) == 0:
			if first {
				return []model.Member{m}
			}

			return nil
		case len(codes) == 1:
			if codes[0] == country {
				return []model.Member{m}
			}

			return nil
		default:
			i := slices.Index(codes, country)

			switch {
			case i < 0:
				return nil
			case s.collided[m.ID]:
				return []model.Member{m}
			}

			id, _ := model.SubID(m.ID, i+1)

			return []model.Member{{Type: model.RELATION, ID: id, Role: m.Role}}
		}
	case model.NODE:
		if n, ok := s.atlas.Node(m.ID); ok {
			if keep(n.Tags.Country()) {
				return []model.Member{m}
			}

			return nil
		}
	case model.EDGE:
		if e, ok := s.atlas.Edge(m.ID); ok {
			if keep(e.Tags.Country()) {
				return []model.Member{m}
			}

			return nil
		}
	default:
		panic(fmt.Sprintf("unknown member type %d", int32(m.Type)))
	}

	if first {
		return []model.Member{m}
	}

	return nil
}

// copyID returns the ID of the copy of relation id for its i-th country.
func (s *slicer) copyID(id model.ID, i int) model.ID {
	if len(s.countries[id]) < 2 || s.collided[id] {
		return id
	}

	sub, _ := model.SubID(id, i+1)

	return sub
}

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

// Package complex assembles area features out of the relations of a
// sliced atlas.
package complex

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"m4o.io/atlas/internal/geometry"
	"m4o.io/atlas/model"
)

// MultiPolygon is an area built from the rings of a multipolygon relation.
type MultiPolygon struct {
	Source   model.ID
	Country  string
	Tags     model.Tags
	Geometry orb.MultiPolygon
}

// Area returns the planar area in square degrees.
func (m MultiPolygon) Area() float64 {
	return planar.Area(m.Geometry)
}

// FindMultiPolygons builds every multipolygon relation of the atlas whose
// rings close. Relations already flagged as invalid are skipped, the
// others failing to build are reported as topology errors.
func FindMultiPolygons(a *model.Atlas, eps model.Epsilon) ([]MultiPolygon, []*model.FeatureError) {
	var (
		found    []MultiPolygon
		failures []*model.FeatureError
	)

	for r := range a.Relations() {
		if !r.IsMultiPolygon() || r.Tags.Get(model.TagSyntheticInvalidMultiPolygon) == model.Yes {
			continue
		}

		mp, err := build(a, r, eps)
		if err != nil {
			failures = append(failures, err)

			continue
		}

		found = append(found, mp)
	}

	return found, failures
}

func build(a *model.Atlas, r model.Relation, eps model.Epsilon) (MultiPolygon, *model.FeatureError) {
	var outer, inner []geometry.Piece

	for _, m := range r.Members {
		if m.Type != model.LINE {
			continue
		}

		l, ok := a.Line(m.ID)
		if !ok {
			return MultiPolygon{}, model.NewFeatureError(model.ErrReferenceIntegrity, model.RELATION, r.ID,
				"ring line %d is missing", m.ID)
		}

		p := geometry.Piece{ID: l.ID, Locations: l.Locations}

		switch m.Role {
		case model.RoleOuter, "":
			outer = append(outer, p)
		case model.RoleInner:
			inner = append(inner, p)
		}
	}

	outers, err := rings(r.ID, outer, eps)
	if err != nil {
		return MultiPolygon{}, err
	}

	if len(outers) == 0 {
		return MultiPolygon{}, model.NewFeatureError(model.ErrTopologyRepair, model.RELATION, r.ID, "no outer ring")
	}

	inners, err := rings(r.ID, inner, eps)
	if err != nil {
		return MultiPolygon{}, err
	}

	mp := make(orb.MultiPolygon, len(outers))
	for i, o := range outers {
		mp[i] = orb.Polygon{o}
	}

Holes:
	for _, h := range inners {
		sample, _ := planar.CentroidArea(h)

		for i, o := range outers {
			if planar.RingContains(o, sample) {
				mp[i] = append(mp[i], h)

				continue Holes
			}
		}

		return MultiPolygon{}, model.NewFeatureError(model.ErrTopologyRepair, model.RELATION, r.ID,
			"inner ring around %v lies outside every outer ring", sample)
	}

	return MultiPolygon{
		Source:   r.ID,
		Country:  r.Tags.Country(),
		Tags:     r.Tags,
		Geometry: mp,
	}, nil
}

// rings stitches the pieces and fails unless every chain closes.
func rings(relation model.ID, pieces []geometry.Piece, eps model.Epsilon) ([]orb.Ring, *model.FeatureError) {
	var out []orb.Ring

	for _, c := range geometry.Stitch(pieces, eps) {
		if !c.Closed(eps) {
			return nil, model.NewFeatureError(model.ErrTopologyRepair, model.RELATION, relation,
				"ring through line %d is open between %s and %s", c.Pieces[0], c.First(), c.Last())
		}

		ring := make(orb.Ring, len(c.Locations))
		for i, l := range c.Locations {
			ring[i] = l.Point()
		}

		if _, area := planar.CentroidArea(ring); area == 0 {
			return nil, model.NewFeatureError(model.ErrTopologyRepair, model.RELATION, relation,
				"ring through line %d has no area", c.Pieces[0])
		}

		out = append(out, ring)
	}

	return out, nil
}

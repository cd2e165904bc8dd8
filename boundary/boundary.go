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

// Package boundary provides the country boundary map the slicer cuts
// geometry against.
package boundary

import (
	"slices"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"m4o.io/atlas/internal/geometry"
	"m4o.io/atlas/model"
)

// CountryBoundary is the geometry of a single country.
type CountryBoundary struct {
	Code    string
	Polygon orb.MultiPolygon

	// Rings holds every outer and inner ring of Polygon, closed.
	Rings [][]model.Location
	Box   *model.BoundingBox
}

// Contains reports whether l lies inside the country or on its border.
func (c *CountryBoundary) Contains(l model.Location) bool {
	return c.Box.ContainsLocation(l) && planar.MultiPolygonContains(c.Polygon, l.Point())
}

// GridCell declares a box fully covered by a single country.
type GridCell struct {
	Code string
	Box  *model.BoundingBox
}

// CountryBoundaryMap indexes the boundaries of a set of countries. It is
// immutable and safe for concurrent reads.
type CountryBoundaryMap struct {
	countries map[string]*CountryBoundary
	codes     []string
	grid      []GridCell

	countryIndex *rtreego.Rtree
	edgeIndex    *rtreego.Rtree
}

// NewCountryBoundaryMap builds the spatial indices over the boundaries.
func NewCountryBoundaryMap(boundaries []*CountryBoundary, grid []GridCell) *CountryBoundaryMap {
	m := &CountryBoundaryMap{
		countries:    make(map[string]*CountryBoundary, len(boundaries)),
		countryIndex: rtreego.NewTree(2, 25, 50),
		edgeIndex:    rtreego.NewTree(2, 25, 50),
	}

	for _, b := range boundaries {
		m.countries[b.Code] = b
		m.countryIndex.Insert(countryEntry{b})

		for r, ring := range b.Rings {
			for i := 0; i+1 < len(ring); i++ {
				m.edgeIndex.Insert(edgeEntry{code: b.Code, ring: r, index: i, a: ring[i], b: ring[i+1]})
			}
		}
	}

	m.codes = model.SortedKeys(m.countries)

	for _, c := range grid {
		if _, ok := m.countries[c.Code]; ok {
			m.grid = append(m.grid, c)
		}
	}

	return m
}

// Filter returns a map restricted to the countries keep accepts.
func (m *CountryBoundaryMap) Filter(keep func(code string) bool) *CountryBoundaryMap {
	var boundaries []*CountryBoundary

	for _, code := range m.codes {
		if keep(code) {
			boundaries = append(boundaries, m.countries[code])
		}
	}

	return NewCountryBoundaryMap(boundaries, m.grid)
}

// Codes returns the country codes of the map in ascending order.
func (m *CountryBoundaryMap) Codes() []string {
	return slices.Clone(m.codes)
}

// Size returns the number of countries.
func (m *CountryBoundaryMap) Size() int {
	return len(m.codes)
}

// Boundary returns the boundary of a country.
func (m *CountryBoundaryMap) Boundary(code string) (*CountryBoundary, bool) {
	b, ok := m.countries[code]

	return b, ok
}

// Grid returns the declared grid cells.
func (m *CountryBoundaryMap) Grid() []GridCell {
	return slices.Clone(m.grid)
}

// CountriesAt returns the codes of the countries containing l, in
// ascending order. A location on a border belongs to every country sharing
// that border.
func (m *CountryBoundaryMap) CountriesAt(l model.Location) []string {
	for _, c := range m.grid {
		if strictlyInside(c.Box, l) {
			return []string{c.Code}
		}
	}

	var codes []string

	for _, s := range m.countryIndex.SearchIntersect(pointRect(l)) {
		if b := s.(countryEntry).CountryBoundary; b.Contains(l) {
			codes = append(codes, b.Code)
		}
	}

	slices.Sort(codes)

	return codes
}

// CountryAt returns the lowest code of the countries containing l.
func (m *CountryBoundaryMap) CountryAt(l model.Location) (string, bool) {
	codes := m.CountriesAt(l)
	if len(codes) == 0 {
		return "", false
	}

	return codes[0], true
}

// Crossings returns where segment ab meets any country border, ordered
// along the segment. Locations closer than eps are reported once.
func (m *CountryBoundaryMap) Crossings(a, b model.Location, eps model.Epsilon) []geometry.Crossing {
	var crossings []geometry.Crossing

	for _, s := range m.edgeIndex.SearchIntersect(segmentRect(a, b)) {
		e := s.(edgeEntry)

		if c, ok := geometry.Intersect(a, b, e.a, e.b); ok {
			crossings = append(crossings, c)
		}
	}

	slices.SortFunc(crossings, func(x, y geometry.Crossing) int {
		switch {
		case x.T < y.T:
			return -1
		case x.T > y.T:
			return 1
		default:
			return 0
		}
	})

	return slices.CompactFunc(crossings, func(x, y geometry.Crossing) bool {
		return x.Location.EqualWithin(y.Location, eps)
	})
}

// BorderPath returns the shorter walk along the border of a country
// between two locations lying on it, within maxDistance degrees. It fails
// when no single ring of the country holds both locations.
func (m *CountryBoundaryMap) BorderPath(code string, from, to model.Location, maxDistance float64) ([]model.Location, bool) {
	b, ok := m.countries[code]
	if !ok {
		return nil, false
	}

	var best []model.Location

	for _, ring := range b.Rings {
		pf := geometry.Locate(ring, from)
		pt := geometry.Locate(ring, to)

		if pf.Distance > maxDistance || pt.Distance > maxDistance {
			continue
		}

		path := geometry.RingPath(ring, from, to, pf, pt)
		if best == nil || model.Length(path) < model.Length(best) {
			best = path
		}
	}

	return best, best != nil
}

func strictlyInside(b *model.BoundingBox, l model.Location) bool {
	return b.Left < l.Lon && l.Lon < b.Right && b.Bottom < l.Lat && l.Lat < b.Top
}

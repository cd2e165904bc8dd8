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

package geometry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/atlas/internal/geometry"
	"m4o.io/atlas/model"
)

func loc(lat, lon model.Degrees) model.Location {
	return model.Location{Lat: lat, Lon: lon}
}

func TestIntersect(t *testing.T) {
	test_cases := []struct {
		name     string
		a, b     model.Location
		c, d     model.Location
		expected model.Location
		t        float64
		ok       bool
	}{
		{"crossing", loc(1, -1), loc(1, 1), loc(-10, 0), loc(10, 0), loc(1, 0), 0.5, true},
		{"at vertex", loc(2, -2), loc(2, 0), loc(-10, 0), loc(10, 0), loc(2, 0), 1, true},
		{"disjoint", loc(1, -2), loc(1, -1), loc(-10, 0), loc(10, 0), model.Location{}, 0, false},
		{"parallel", loc(-1, 0), loc(1, 0), loc(-10, 0), loc(10, 0), model.Location{}, 0, false},
	}

	for _, tc := range test_cases {
		t.Run(tc.name, func(t *testing.T) {
			c, ok := geometry.Intersect(tc.a, tc.b, tc.c, tc.d)
			require.Equal(t, tc.ok, ok)

			if ok {
				assert.True(t, tc.expected.EqualWithin(c.Location, model.E9))
				assert.InDelta(t, tc.t, c.T, 1e-12)
			}
		})
	}
}

func TestRingPath(t *testing.T) {
	ring := []model.Location{loc(-10, -10), loc(10, -10), loc(10, 0), loc(-10, 0), loc(-10, -10)}

	from := loc(-2, 0)
	to := loc(2, 0)

	pf := geometry.Locate(ring, from)
	pt := geometry.Locate(ring, to)
	assert.InDelta(t, 0, pf.Distance, 1e-12)
	assert.Equal(t, 2, pf.Segment)

	path := geometry.RingPath(ring, from, to, pf, pt)
	assert.Equal(t, []model.Location{from, to}, path)

	path = geometry.RingPath(ring, to, from, pt, pf)
	assert.Equal(t, []model.Location{to, from}, path)
}

func TestRingPath_AroundCorner(t *testing.T) {
	ring := []model.Location{loc(-10, -10), loc(10, -10), loc(10, 0), loc(-10, 0), loc(-10, -10)}

	from := loc(9, 0)
	to := loc(10, -9)

	path := geometry.RingPath(ring, from, to, geometry.Locate(ring, from), geometry.Locate(ring, to))
	assert.Equal(t, []model.Location{from, loc(10, 0), to}, path)
}

// Both walks are as long on the plane; the one along the 60th parallel is
// shorter on the sphere.
func TestRingPath_Geodesic(t *testing.T) {
	ring := []model.Location{loc(0, 0), loc(0, 10), loc(60, 10), loc(60, 0), loc(0, 0)}

	from := loc(30, 0)
	to := loc(30, 10)

	path := geometry.RingPath(ring, from, to, geometry.Locate(ring, from), geometry.Locate(ring, to))
	assert.Equal(t, []model.Location{from, loc(60, 0), loc(60, 10), to}, path)
}

func TestProject(t *testing.T) {
	test_cases := []struct {
		name     string
		x        model.Location
		t        float64
		distance float64
	}{
		{"interior", loc(1, 5), 0.5, 1},
		{"before start", loc(0, -3), 0, 3},
		{"past end", loc(0, 14), 1, 4},
	}

	for _, tc := range test_cases {
		t.Run(tc.name, func(t *testing.T) {
			pt, d := geometry.Project(loc(0, 0), loc(0, 10), tc.x)
			assert.InDelta(t, tc.t, pt, 1e-12)
			assert.InDelta(t, tc.distance, d, 1e-12)
		})
	}
}

func TestStitch(t *testing.T) {
	pieces := []geometry.Piece{
		{ID: 1, Locations: []model.Location{loc(0, 0), loc(0, 1)}},
		{ID: 2, Locations: []model.Location{loc(1, 1), loc(1, 0), loc(0, 0)}},
		{ID: 3, Locations: []model.Location{loc(1, 1), loc(0, 1)}},
		{ID: 4, Locations: []model.Location{loc(5, 5), loc(6, 6)}},
	}

	chains := geometry.Stitch(pieces, model.E7)
	require.Len(t, chains, 2)

	assert.True(t, chains[0].Closed(model.E7))
	assert.Equal(t, []model.ID{2, 1, 3}, chains[0].Pieces)
	assert.Len(t, chains[0].Locations, 5)

	assert.False(t, chains[1].Closed(model.E7))
}

func TestSplit(t *testing.T) {
	locs := []model.Location{loc(0, 0), loc(0, 1), loc(0, 2), loc(0, 3)}

	parts := geometry.Split(locs, []int{1, 2})
	require.Len(t, parts, 3)
	assert.Equal(t, locs[0:2], parts[0])
	assert.Equal(t, locs[1:3], parts[1])
	assert.Equal(t, locs[2:4], parts[2])

	assert.Equal(t, [][]model.Location{locs}, geometry.Split(locs, nil))
}

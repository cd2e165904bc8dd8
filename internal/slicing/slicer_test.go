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

package slicing_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/atlas/atlastext"
	"m4o.io/atlas/boundary"
	"m4o.io/atlas/complex"
	"m4o.io/atlas/config"
	"m4o.io/atlas/internal/slicing"
	"m4o.io/atlas/model"
)

func boundaries(t *testing.T) *boundary.CountryBoundaryMap {
	t.Helper()

	b, err := boundary.Load(filepath.Join("..", "..", "testdata", "boundaries.txt"))
	require.NoError(t, err)

	return b
}

func fixture(t *testing.T, name string) *model.Atlas {
	t.Helper()

	a, err := atlastext.Load(filepath.Join("..", "..", "testdata", "slicing", name))
	require.NoError(t, err)

	return a
}

func slice(t *testing.T, a *model.Atlas, cfg config.LoadingOption) (*model.Atlas, []*model.FeatureError, slicing.Stats) {
	t.Helper()

	out, failures, stats, err := slicing.Slice(context.Background(), a, boundaries(t), cfg, slog.Default())
	require.NoError(t, err)

	return out, failures, stats
}

func TestSliceScenarios(t *testing.T) {
	tests := []struct {
		name          string
		fixture       string
		lines         int
		points        int
		relations     int
		multiPolygons int
	}{
		{"three closed rings", "closed_rings.txt", 9, 0, 2, 2},
		{"hole from closed lines", "hole_closed.txt", 5, 0, 2, 2},
		{"hole from open lines", "hole_open.txt", 8, 11, 2, 2},
		{"outer from open lines", "outer_open.txt", 6, 9, 2, 2},
		{"outer with duplicate points", "outer_open_duplicates.txt", 6, 9, 2, 2},
		{"outer and inner crossing", "both_spanning.txt", 8, 0, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, failures, _ := slice(t, fixture(t, tt.fixture), config.Default())

			assert.Empty(t, failures)
			assert.Equal(t, tt.lines, out.NumberOfLines(), "lines")
			assert.Equal(t, tt.points, out.NumberOfPoints(), "points")
			assert.Equal(t, tt.relations, out.NumberOfRelations(), "relations")

			for l := range out.Lines() {
				assert.NotEqual(t, model.CountryUnresolved, l.Tags.Country(), "line %d", l.ID)

				for i := 1; i < len(l.Locations); i++ {
					assert.False(t, l.Locations[i-1].EqualWithin(l.Locations[i], model.DefaultTolerance),
						"line %d repeats %s", l.ID, l.Locations[i])
				}
			}

			for p := range out.Points() {
				assert.NotEqual(t, model.CountryUnresolved, p.Tags.Country(), "point %d", p.ID)
			}

			for r := range out.Relations() {
				assert.NotContains(t, r.Tags, model.TagSyntheticInvalidMultiPolygon)

				for _, m := range r.Members {
					assert.True(t, out.Contains(m), "relation %d member %s", r.ID, m)
				}
			}

			found, invalid := complex.FindMultiPolygons(out, model.DefaultTolerance)
			assert.Empty(t, invalid)
			assert.Len(t, found, tt.multiPolygons)
		})
	}
}

func TestSliceClosedRings(t *testing.T) {
	out, _, stats := slice(t, fixture(t, "closed_rings.txt"), config.Default())

	assert.Equal(t, slicing.Stats{
		SplitLines:     2,
		LinePieces:     5,
		ClosingLines:   4,
		RelationCopies: 2,
	}, stats)

	for _, id := range []model.ID{101001, 101002, 102001, 102002, 103, 201900, 201901, 201902, 201903} {
		_, ok := out.Line(id)
		assert.True(t, ok, "line %d", id)
	}

	l, ok := out.Line(101001)
	require.True(t, ok)
	assert.Equal(t, "CIV", l.Tags.Country())

	l, ok = out.Line(201900)
	require.True(t, ok)
	assert.Equal(t, model.Yes, l.Tags.Get(model.TagSyntheticBoundaryLine))
	assert.Equal(t, "CIV", l.Tags.Country())

	civ, ok := out.Relation(201001)
	require.True(t, ok)
	assert.Equal(t, "CIV", civ.Tags.Country())
	assert.Equal(t, "water", civ.Tags.Get("natural"))

	lbr, ok := out.Relation(201002)
	require.True(t, ok)
	assert.Equal(t, "LBR", lbr.Tags.Country())
	assert.Equal(t, []model.Member{
		{Type: model.LINE, ID: 101002, Role: model.RoleOuter},
		{Type: model.LINE, ID: 102002, Role: model.RoleInner},
		{Type: model.LINE, ID: 201902, Role: model.RoleOuter},
		{Type: model.LINE, ID: 201903, Role: model.RoleInner},
	}, lbr.Members)

	meta := out.Metadata()
	assert.True(t, meta.Sliced)
	assert.Equal(t, []string{"CIV", "LBR"}, meta.Countries)
}

func TestSliceOpenLinesCreateBoundaryPoints(t *testing.T) {
	out, _, stats := slice(t, fixture(t, "hole_open.txt"), config.Default())

	assert.Equal(t, 2, stats.SyntheticPoints)

	p, ok := out.Point(101001)
	require.True(t, ok)
	assert.Equal(t, model.NewLocation(4, 0), p.Location)
	assert.Equal(t, model.Yes, p.Tags.Get(model.TagSyntheticBoundaryNode))

	p, ok = out.Point(102001)
	require.True(t, ok)
	assert.Equal(t, model.NewLocation(-4, 0), p.Location)

	p, ok = out.Point(5)
	require.True(t, ok)
	assert.Equal(t, "CIV", p.Tags.Country())

	l, ok := out.Line(101001)
	require.True(t, ok)
	assert.Equal(t, "LBR", l.Tags.Country())
	assert.Equal(t, model.NewLocation(4, 0), l.Locations[len(l.Locations)-1])
}

func TestSliceBorderPointsAreReused(t *testing.T) {
	out, _, stats := slice(t, fixture(t, "outer_open_duplicates.txt"), config.Default())

	assert.Zero(t, stats.SyntheticPoints)

	for _, id := range []model.ID{10, 11} {
		_, ok := out.Point(id)
		assert.False(t, ok, "point %d", id)
	}

	l, ok := out.Line(101001)
	require.True(t, ok)
	assert.Len(t, l.Locations, 4)
}

func TestSliceRelationOfRelations(t *testing.T) {
	out, failures, _ := slice(t, fixture(t, "relation_of_relations.txt"), config.Default())

	assert.Empty(t, failures)
	assert.Equal(t, 2, out.NumberOfPoints())
	assert.Equal(t, 4, out.NumberOfRelations())

	for r := range out.Relations() {
		assert.NotEqual(t, model.CountryUnresolved, r.Tags.Country(), "relation %d", r.ID)
	}

	civ, ok := out.Relation(203001)
	require.True(t, ok)
	assert.Equal(t, "CIV", civ.Tags.Country())
	assert.Equal(t, []model.Member{{Type: model.RELATION, ID: 202}}, civ.Members)

	lbr, ok := out.Relation(203002)
	require.True(t, ok)
	assert.Equal(t, []model.Member{{Type: model.RELATION, ID: 201}}, lbr.Members)
}

func TestSliceWithoutRepair(t *testing.T) {
	cfg := config.Default()
	cfg.MultiPolygonRepair = false

	out, failures, stats := slice(t, fixture(t, "both_spanning.txt"), cfg)

	assert.Empty(t, failures)
	assert.Zero(t, stats.ClosingLines)
	assert.Equal(t, 4, out.NumberOfLines())
	assert.Equal(t, 2, out.NumberOfRelations())
}

func TestSliceFailures(t *testing.T) {
	const input = `
# Points
1 || 1,1 || amenity=cafe
# Lines
10 || 1,1 1,1 || highway=footway
11 || 1,-1 1,1 || highway=footway
# Relations
20 || RELATION:21: || type=group
21 || RELATION:20: || type=group
22 || LINE:10: || type=route
`
	a, err := atlastext.Read(strings.NewReader(input))
	require.NoError(t, err)

	out, failures, _ := slice(t, a, config.Default())

	kinds := make(map[model.ID]error)
	for _, f := range failures {
		kinds[f.ID] = f.Kind
	}

	assert.Equal(t, map[model.ID]error{
		10: model.ErrGeometry,
		20: model.ErrCountryResolution,
		21: model.ErrCountryResolution,
		22: model.ErrCountryResolution,
	}, kinds)

	_, ok := out.Line(10)
	assert.False(t, ok)

	for _, id := range []model.ID{20, 21, 22} {
		r, ok := out.Relation(id)
		require.True(t, ok)
		assert.Equal(t, model.CountryUnresolved, r.Tags.Country())
	}

	assert.Equal(t, 2, out.NumberOfLines())
}

func TestSliceIDCollisions(t *testing.T) {
	const input = `
# Points
2001 || 5,5 || amenity=cafe
# Lines
1 || 1,-1 1,1 || highway=road
1001 || 5,5 5,6 || highway=road
2 || 1,-1 1,1 || highway=road
# Relations
30 || LINE:2: || type=route
30001 || LINE:1001: || type=route
31 || RELATION:30: || type=group
`
	a, err := atlastext.Read(strings.NewReader(input))
	require.NoError(t, err)

	out, failures, _ := slice(t, a, config.Default())

	kinds := make(map[model.ID]error)
	for _, f := range failures {
		kinds[f.ID] = f.Kind
	}

	assert.Equal(t, map[model.ID]error{
		1:    model.ErrIDCollision,
		2001: model.ErrIDCollision,
		30:   model.ErrIDCollision,
	}, kinds)

	_, ok := out.Line(1)
	assert.False(t, ok)

	for _, id := range []model.ID{1001, 2001, 2002} {
		_, ok := out.Line(id)
		assert.True(t, ok, "line %d", id)
	}

	p, ok := out.Point(2001)
	require.True(t, ok)
	assert.Equal(t, "cafe", p.Tags.Get("amenity"))
	assert.Equal(t, 1, out.NumberOfPoints())

	whole, ok := out.Relation(30)
	require.True(t, ok)
	assert.Equal(t, "CIV,LBR", whole.Tags.Country())
	assert.Equal(t, []model.Member{{Type: model.LINE, ID: 2001}, {Type: model.LINE, ID: 2002}}, whole.Members)

	civ, ok := out.Relation(30001)
	require.True(t, ok)
	assert.Equal(t, "CIV", civ.Tags.Country())
	assert.Equal(t, []model.Member{{Type: model.LINE, ID: 1001}}, civ.Members)

	for _, id := range []model.ID{31001, 31002} {
		r, ok := out.Relation(id)
		require.True(t, ok, "relation %d", id)
		assert.Equal(t, []model.Member{{Type: model.RELATION, ID: 30}}, r.Members)
	}
}

func TestSliceClosingLineCollision(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "slicing", "closed_rings.txt"))
	require.NoError(t, err)

	a, err := atlastext.Read(strings.NewReader(string(data) + "# Lines\n201900 || 5,5 5,6 || highway=road\n"))
	require.NoError(t, err)

	out, failures, stats := slice(t, a, config.Default())

	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], model.ErrIDCollision)
	assert.Equal(t, model.ID(201), failures[0].ID)
	assert.Zero(t, stats.ClosingLines)

	l, ok := out.Line(201900)
	require.True(t, ok)
	assert.Equal(t, "road", l.Tags.Get("highway"))

	for _, id := range []model.ID{201001, 201002} {
		r, ok := out.Relation(id)
		require.True(t, ok, "relation %d", id)
		assert.Equal(t, model.Yes, r.Tags.Get(model.TagSyntheticInvalidMultiPolygon))
	}
}

func TestSliceTopologyRepairFailure(t *testing.T) {
	const input = `
# Lines
101 || -4,-4 4,-4 4,4 -4,4
# Relations
201 || LINE:101:outer || type=multipolygon
`
	a, err := atlastext.Read(strings.NewReader(input))
	require.NoError(t, err)

	out, failures, stats := slice(t, a, config.Default())

	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], model.ErrTopologyRepair)
	assert.Equal(t, model.RELATION, failures[0].Type)
	assert.Equal(t, model.ID(201), failures[0].ID)
	assert.Zero(t, stats.ClosingLines)
	assert.Equal(t, 2, out.NumberOfLines())

	for _, id := range []model.ID{201001, 201002} {
		r, ok := out.Relation(id)
		require.True(t, ok, "relation %d", id)
		assert.Equal(t, model.Yes, r.Tags.Get(model.TagSyntheticInvalidMultiPolygon))

		for _, m := range r.Members {
			assert.True(t, out.Contains(m), "relation %d member %s", id, m)
		}
	}

	found, invalid := complex.FindMultiPolygons(out, model.DefaultTolerance)
	assert.Empty(t, found)
	assert.Empty(t, invalid)
}

func TestSliceNestedRings(t *testing.T) {
	const input = `
# Lines
101 || -4,-4 4,-4 4,4 -4,4 -4,-4
# Relations
300 || RELATION:301: || type=multipolygon|natural=water
301 || LINE:101:outer || type=group
`
	a, err := atlastext.Read(strings.NewReader(input))
	require.NoError(t, err)

	out, failures, stats := slice(t, a, config.Default())

	assert.Empty(t, failures)
	assert.Equal(t, 2, stats.ClosingLines)

	for _, id := range []model.ID{300900, 300901} {
		l, ok := out.Line(id)
		require.True(t, ok, "line %d", id)
		assert.Equal(t, model.Yes, l.Tags.Get(model.TagSyntheticBoundaryLine))
	}

	for _, id := range []model.ID{300001, 300002} {
		r, ok := out.Relation(id)
		require.True(t, ok, "relation %d", id)

		for _, m := range r.Members {
			assert.Equal(t, model.LINE, m.Type, "relation %d member %s", id, m)
		}
	}

	found, invalid := complex.FindMultiPolygons(out, model.DefaultTolerance)
	assert.Empty(t, invalid)

	var sources []model.ID
	for _, mp := range found {
		sources = append(sources, mp.Source)
	}

	assert.ElementsMatch(t, []model.ID{300001, 300002}, sources)
}

// joinedPieces concatenates the pieces of a line in ID order, keeping the
// location two pieces share once.
func joinedPieces(t *testing.T, a *model.Atlas, line model.ID) []model.Location {
	t.Helper()

	if l, ok := a.Line(line); ok {
		return l.Locations
	}

	var joined []model.Location

	for i := 1; i < model.MaxSubIndex; i++ {
		id, err := model.SubID(line, i)
		require.NoError(t, err)

		l, ok := a.Line(id)
		if !ok {
			break
		}

		locs := l.Locations
		if len(joined) > 0 {
			require.Equal(t, joined[len(joined)-1], locs[0], "piece %d does not continue line %d", id, line)
			locs = locs[1:]
		}

		joined = append(joined, locs...)
	}

	return joined
}

// withoutCrossings drops the locations slicing inserted, each of which must
// lie on the border.
func withoutCrossings(t *testing.T, locs, input []model.Location) []model.Location {
	t.Helper()

	original := make(map[model.LocationKey]bool)
	for _, l := range input {
		original[l.Key()] = true
	}

	var kept []model.Location

	for _, l := range locs {
		if original[l.Key()] {
			kept = append(kept, l)

			continue
		}

		assert.True(t, l.Lon.EqualWithin(0, model.DefaultTolerance), "%s is not on the border", l)
	}

	return kept
}

func isRotation(ring, locs []model.Location) bool {
	if len(ring) != len(locs) {
		return false
	}

	for off := range locs {
		if slices.Equal(ring, append(slices.Clone(locs[off:]), locs[:off]...)) {
			return true
		}
	}

	return len(ring) == 0
}

func TestSlicePiecesCoverTheirLine(t *testing.T) {
	for _, name := range []string{
		"closed_rings.txt",
		"hole_closed.txt",
		"hole_open.txt",
		"outer_open.txt",
		"outer_open_duplicates.txt",
		"both_spanning.txt",
	} {
		t.Run(name, func(t *testing.T) {
			in := fixture(t, name)
			out, _, _ := slice(t, in, config.Default())

			for l := range in.Lines() {
				locs := model.CollapseDuplicates(l.Locations, model.DefaultTolerance)
				joined := joinedPieces(t, out, l.ID)
				require.NotEmpty(t, joined, "line %d", l.ID)

				last := len(locs) - 1
				if last > 2 && locs[0].EqualWithin(locs[last], model.DefaultTolerance) {
					require.True(t, joined[0].EqualWithin(joined[len(joined)-1], model.DefaultTolerance), "line %d", l.ID)

					ring := withoutCrossings(t, joined[:len(joined)-1], locs)
					assert.True(t, isRotation(locs[:last], ring), "line %d", l.ID)

					continue
				}

				assert.Equal(t, locs, withoutCrossings(t, joined, locs), "line %d", l.ID)
			}
		})
	}
}

func TestSliceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, _, err := slicing.Slice(ctx, fixture(t, "closed_rings.txt"), boundaries(t), config.Default(), slog.Default())
	assert.ErrorIs(t, err, context.Canceled)
}

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

package model_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/atlas/model"
)

func loc(lat, lon model.Degrees) model.Location {
	return model.Location{Lat: lat, Lon: lon}
}

func TestBuilder_Freeze(t *testing.T) {
	b := model.NewBuilder()
	tags := model.Tags{"name": "x"}

	require.NoError(t, b.AddAll(
		model.Point{ID: 3, Location: loc(1, 1)},
		model.Point{ID: 1, Location: loc(1, 1), Tags: tags},
		model.Point{ID: 2, Location: loc(2, 2)},
		model.Line{ID: 10, Locations: []model.Location{loc(0, 0), loc(3, -3)}},
		model.Relation{ID: 20, Members: []model.Member{{Type: model.LINE, ID: 10, Role: "outer"}}},
	))

	tags["name"] = "changed"

	a, err := b.Freeze()
	require.NoError(t, err)

	var ids []model.ID
	for p := range a.Points() {
		ids = append(ids, p.ID)
	}

	assert.Equal(t, []model.ID{1, 2, 3}, ids)
	assert.Equal(t, 3, a.NumberOfPoints())
	assert.Equal(t, 1, a.NumberOfLines())
	assert.Equal(t, 1, a.NumberOfRelations())
	assert.Equal(t, 0, a.NumberOfNodes())
	assert.Equal(t, 0, a.NumberOfEdges())

	p, ok := a.Point(1)
	require.True(t, ok)
	assert.Equal(t, "x", p.Tags.Get("name"))

	at := a.PointsAt(loc(1, 1))
	require.Len(t, at, 2)
	assert.Equal(t, model.ID(1), at[0].ID)

	assert.True(t, a.Contains(model.Member{Type: model.LINE, ID: 10}))
	assert.False(t, a.Contains(model.Member{Type: model.EDGE, ID: 10}))

	bounds := a.Bounds()
	require.NotNil(t, bounds)
	assert.Equal(t, model.Degrees(3), bounds.Top)
	assert.Equal(t, model.Degrees(-3), bounds.Left)

	_, err = b.Freeze()
	assert.ErrorIs(t, err, model.ErrFrozen)
	assert.ErrorIs(t, b.Add(model.Point{ID: 4}), model.ErrFrozen)
}

func TestBuilder_Rejects(t *testing.T) {
	b := model.NewBuilder()

	require.NoError(t, b.Add(model.Point{ID: 1}))
	assert.ErrorIs(t, b.Add(model.Point{ID: 1}), model.ErrDuplicateID)
	assert.ErrorIs(t, b.Add(model.Line{ID: 1, Locations: []model.Location{loc(0, 0)}}), model.ErrGeometry)
}

func TestEmptyAtlas(t *testing.T) {
	a, err := model.NewBuilder().Freeze()
	require.NoError(t, err)

	assert.Nil(t, a.Bounds())
	assert.Empty(t, slices.Collect(a.Lines()))
}

func TestFeatureError(t *testing.T) {
	err := model.NewFeatureError(model.ErrGeometry, model.LINE, 7, "only %d location", 1)

	assert.True(t, errors.Is(err, model.ErrGeometry))
	assert.False(t, errors.Is(err, model.ErrTopologyRepair))
	assert.Equal(t, "LINE 7: geometry error: only 1 location", err.Error())
}

func TestSubID(t *testing.T) {
	id, err := model.SubID(123, 4)
	require.NoError(t, err)
	assert.Equal(t, model.ID(123004), id)
	assert.Equal(t, model.ID(123), model.ParentID(id))
	assert.Equal(t, model.ID(123), model.ParentID(-id))

	_, err = model.SubID(123, 0)
	assert.Error(t, err)

	_, err = model.SubID(123, 1000)
	assert.Error(t, err)
}

func TestLocationID(t *testing.T) {
	a := model.LocationID(loc(0, 0))
	b := model.LocationID(loc(0, 1e-7))

	assert.Less(t, int64(a), int64(0))
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, model.LocationID(loc(0, 0)))
	assert.Less(t, int64(model.LocationID(loc(90, 180))), int64(0))
}

func TestEntityType(t *testing.T) {
	for _, et := range []model.EntityType{model.POINT, model.LINE, model.RELATION, model.NODE, model.EDGE} {
		parsed, err := model.ParseEntityType(et.String())
		require.NoError(t, err)
		assert.Equal(t, et, parsed)
	}

	_, err := model.ParseEntityType("WAY")
	assert.Error(t, err)
}

func TestTags(t *testing.T) {
	tags := model.Tags{"b": "2", "a": "1"}

	assert.Equal(t, "a=1|b=2", tags.String())
	assert.Equal(t, model.CountryUnresolved, tags.Country())
	assert.Equal(t, "CIV", tags.With(model.TagISOCountryCode, "CIV").Country())
	assert.False(t, tags.Has(model.TagISOCountryCode))
	assert.True(t, tags.HasAny([]string{"x", "a"}))
}

func TestLineIsClosed(t *testing.T) {
	open := model.Line{Locations: []model.Location{loc(0, 0), loc(1, 1)}}
	closed := model.Line{Locations: []model.Location{loc(0, 0), loc(1, 1), loc(1, 0), loc(0, 0)}}

	assert.False(t, open.IsClosed())
	assert.True(t, closed.IsClosed())
}

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

package ingest_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/atlas/ingest"
	"m4o.io/atlas/model"
)

const extract = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="1.0" lon="-1.0"/>
  <node id="2" lat="1.0" lon="1.0">
    <tag k="amenity" v="cafe"/>
  </node>
  <node id="3" lat="2.0" lon="1.0"/>
  <way id="10">
    <nd ref="1"/>
    <nd ref="2"/>
    <nd ref="3"/>
    <tag k="highway" v="residential"/>
  </way>
  <way id="11">
    <nd ref="1"/>
    <nd ref="99"/>
  </way>
  <relation id="20">
    <member type="way" ref="10" role="outer"/>
    <member type="node" ref="2" role=""/>
    <member type="relation" ref="21" role="sub"/>
    <tag k="type" v="multipolygon"/>
  </relation>
</osm>
`

func TestReadOSMXML(t *testing.T) {
	a, failures, err := ingest.ReadOSMXML(context.Background(), strings.NewReader(extract))
	require.NoError(t, err)

	assert.Equal(t, 3, a.NumberOfPoints())
	assert.Equal(t, 1, a.NumberOfLines())
	assert.Equal(t, 1, a.NumberOfRelations())
	assert.Equal(t, ingest.WritingProgram, a.Metadata().WritingProgram)

	p, ok := a.Point(2_000)
	require.True(t, ok)
	assert.Equal(t, model.NewLocation(1, 1), p.Location)
	assert.Equal(t, "cafe", p.Tags.Get("amenity"))

	l, ok := a.Line(10_000)
	require.True(t, ok)
	assert.Equal(t, []model.Location{
		model.NewLocation(1, -1),
		model.NewLocation(1, 1),
		model.NewLocation(2, 1),
	}, l.Locations)

	_, ok = a.Line(11_000)
	assert.False(t, ok)

	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], model.ErrGeometry)
	assert.Equal(t, model.LINE, failures[0].Type)
	assert.Equal(t, model.ID(11_000), failures[0].ID)

	r, ok := a.Relation(20_000)
	require.True(t, ok)
	assert.Equal(t, []model.Member{
		{Type: model.LINE, ID: 10_000, Role: "outer"},
		{Type: model.POINT, ID: 2_000, Role: ""},
		{Type: model.RELATION, ID: 21_000, Role: "sub"},
	}, r.Members)
}

func TestPaddedID(t *testing.T) {
	tests := []struct {
		id       int64
		expected model.ID
	}{
		{1, 1_000},
		{101, 101_000},
		{101001, 101_001_000},
		{-7, -7_000},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ingest.PaddedID(tt.id))
	}
}

// Ways 101 and 101001 both exist in OSM; once padded, no piece or edge
// derived from the first can take the ID of the second.
func TestPaddedIDsLeaveRoomForSubIDs(t *testing.T) {
	for i := 1; i <= model.MaxSubIndex; i++ {
		piece, err := model.SubID(ingest.PaddedID(101), i)
		require.NoError(t, err)
		assert.NotZero(t, piece%ingest.IDPadding)
		assert.NotEqual(t, ingest.PaddedID(101001), piece)

		edge, err := model.SubID(piece, i)
		require.NoError(t, err)
		assert.NotZero(t, edge%ingest.IDPadding)
	}
}

func TestLoadOSMXMLMissingFile(t *testing.T) {
	_, _, err := ingest.LoadOSMXML(context.Background(), filepath.Join(t.TempDir(), "missing.osm"))
	assert.Error(t, err)
}

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

package info

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/atlas"
	"m4o.io/atlas/atlastext"
	"m4o.io/atlas/model"
)

func TestRunInfo(t *testing.T) {
	a, err := atlastext.Load(filepath.Join("..", "..", "..", "testdata", "slicing", "outer_open.txt"))
	require.NoError(t, err)

	info := runInfo(a, true)

	bbox := &model.BoundingBox{Top: 4, Left: -5, Bottom: -4, Right: 5}

	assert.True(t, info.BoundingBox.EqualWithin(bbox, model.E6))
	assert.Equal(t, atlas.Counts{Points: 9, Lines: 2, Relations: 1}, info.Counts)
	assert.Equal(t, map[string]int64{model.CountryUnresolved: 12}, info.CountryCounts)
	assert.InDelta(t, 3_609_000, info.LineLength, 40_000)
	assert.Zero(t, info.EdgeLength)
	assert.False(t, info.Sliced)
}

func sample() *atlasInfo {
	ts, _ := time.Parse(time.RFC3339, "2024-05-01T10:00:00Z")

	return &atlasInfo{
		Metadata: model.Metadata{
			Source:         "west-africa",
			WritingProgram: "atlas-ingest",
			Timestamp:      ts,
			Countries:      []string{"CIV", "LBR"},
			Sliced:         true,
		},
		Counts:        atlas.Counts{Points: 2729006, Lines: 459055, Relations: 12833},
		BoundingBox:   &model.BoundingBox{Top: 10, Left: -10, Bottom: -10, Right: 10},
		CountryCounts: map[string]int64{"CIV": 1500000, "LBR": 1700894},
		LineLength:    1_500_000,
	}
}

func TestRenderJSON(t *testing.T) {
	// mock out to collect JSON output
	buf := bytes.NewBuffer(make([]byte, 8192))
	buf.Reset()

	saved := out

	defer func() { out = saved }()

	out = buf

	renderJSON(sample())

	info := &atlasInfo{}
	if err := json.Unmarshal(buf.Bytes(), info); err != nil {
		t.Fatalf("Unable to unmarshal json %v", err)
	}

	expected := sample()

	assert.True(t, info.BoundingBox.EqualWithin(expected.BoundingBox, model.E6))
	assert.Equal(t, expected.Source, info.Source)
	assert.Equal(t, expected.Timestamp, info.Timestamp.UTC())
	assert.Equal(t, expected.Metadata.Countries, info.Metadata.Countries)
	assert.Equal(t, expected.Counts, info.Counts)
	assert.Equal(t, expected.CountryCounts, info.CountryCounts)
	assert.InDelta(t, expected.LineLength, info.LineLength, 1e-6)
}

func TestRenderText(t *testing.T) {
	// mock out to collect text output
	buf := bytes.NewBuffer(make([]byte, 8192))
	buf.Reset()

	saved := out

	defer func() { out = saved }()

	out = buf

	renderTxt(sample(), true)

	assert.Equal(t, `BoundingBox: [(10, -10) (-10, 10)]
Source: west-africa
WritingProgram: atlas-ingest
Timestamp: 2024-05-01T10:00:00Z
Countries: CIV, LBR
Sliced: true
Sectioned: false
PointCount: 2,729,006
LineCount: 459,055
RelationCount: 12,833
NodeCount: 0
EdgeCount: 0
Country CIV: 1,500,000
Country LBR: 1,700,894
LineLength: 1,500 km
EdgeLength: 0 km
`, buf.String())
}

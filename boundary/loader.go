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

package boundary

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"

	"m4o.io/atlas/internal/compress"
	"m4o.io/atlas/model"
)

const (
	separator = "||"
	gridTag   = "GRID"
)

var ErrFormat = errors.New("malformed boundary definition")

// Load reads a boundary definition file, decompressing it according to its
// extension.
func Load(path string) (*CountryBoundaryMap, error) {
	r, err := compress.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open boundaries: %w", err)
	}
	defer r.Close()

	m, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("cannot load %s: %w", path, err)
	}

	return m, nil
}

// Read parses a plain text boundary definition. Each line is either
//
//	ISO || <WKT POLYGON or MULTIPOLYGON>
//
// or a grid cell fully covered by one country
//
//	GRID || minLon minLat maxLon maxLat || ISO
//
// Blank lines and lines starting with # are ignored. A country appearing on
// several lines gets the union of its polygons.
func Read(r io.Reader) (*CountryBoundaryMap, error) {
	polygons := make(map[string]orb.MultiPolygon)

	var (
		order []string
		grid  []GridCell
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, separator)
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		if fields[0] == gridTag {
			cell, err := parseGridCell(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", n, err)
			}

			grid = append(grid, cell)

			continue
		}

		if len(fields) != 2 || fields[0] == "" {
			return nil, fmt.Errorf("line %d: %w: expected ISO || WKT", n, ErrFormat)
		}

		mp, err := parseWKT(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}

		if _, ok := polygons[fields[0]]; !ok {
			order = append(order, fields[0])
		}

		polygons[fields[0]] = append(polygons[fields[0]], mp...)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	boundaries := make([]*CountryBoundary, 0, len(order))
	for _, code := range order {
		boundaries = append(boundaries, newCountryBoundary(code, polygons[code]))
	}

	return NewCountryBoundaryMap(boundaries, grid), nil
}

func newCountryBoundary(code string, mp orb.MultiPolygon) *CountryBoundary {
	b := &CountryBoundary{Code: code, Polygon: mp, Box: model.InitialBoundingBox()}

	for _, polygon := range mp {
		for _, ring := range polygon {
			locations := make([]model.Location, 0, len(ring))
			for _, p := range ring {
				l := model.FromPoint(p)
				locations = append(locations, l)
				b.Box.ExpandWithLatLng(l.Lat, l.Lon)
			}

			b.Rings = append(b.Rings, locations)
		}
	}

	return b
}

func parseWKT(s string) (orb.MultiPolygon, error) {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	switch g := g.(type) {
	case *geom.Polygon:
		return orb.MultiPolygon{toPolygon(g.Coords())}, nil
	case *geom.MultiPolygon:
		var mp orb.MultiPolygon
		for _, p := range g.Coords() {
			mp = append(mp, toPolygon(p))
		}

		return mp, nil
	default:
		return nil, fmt.Errorf("%w: unsupported geometry %T", ErrFormat, g)
	}
}

func toPolygon(rings [][]geom.Coord) orb.Polygon {
	polygon := make(orb.Polygon, 0, len(rings))

	for _, coords := range rings {
		ring := make(orb.Ring, 0, len(coords)+1)
		for _, c := range coords {
			ring = append(ring, orb.Point{c.X(), c.Y()})
		}

		if !ring.Closed() {
			ring = append(ring, ring[0])
		}

		polygon = append(polygon, ring)
	}

	return polygon
}

func parseGridCell(fields []string) (GridCell, error) {
	if len(fields) != 3 {
		return GridCell{}, fmt.Errorf("%w: expected GRID || box || ISO", ErrFormat)
	}

	corners := strings.Fields(fields[1])
	if len(corners) != 4 {
		return GridCell{}, fmt.Errorf("%w: grid box %q needs 4 values", ErrFormat, fields[1])
	}

	values := make([]model.Degrees, 4)
	for i, c := range corners {
		d, err := model.ParseDegrees(c)
		if err != nil {
			return GridCell{}, fmt.Errorf("%w: %w", ErrFormat, err)
		}

		values[i] = d
	}

	return GridCell{
		Code: fields[2],
		Box:  &model.BoundingBox{Left: values[0], Bottom: values[1], Right: values[2], Top: values[3]},
	}, nil
}

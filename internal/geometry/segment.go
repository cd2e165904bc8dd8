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

// Package geometry holds the planar helpers shared by slicing and
// sectioning. Longitudes are X and latitudes are Y; planar distances are
// in degrees. Segment intersection and distances come from go-geom's xy
// package.
package geometry

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"github.com/twpayne/go-geom/xy/lineintersection"
	"github.com/twpayne/go-geom/xy/lineintersector"

	"m4o.io/atlas/model"
)

func coord(l model.Location) geom.Coord {
	return geom.Coord{float64(l.Lon), float64(l.Lat)}
}

func location(c geom.Coord) model.Location {
	return model.Location{Lat: model.Degrees(c[1]), Lon: model.Degrees(c[0])}
}

// Crossing is where a segment meets another one.
type Crossing struct {
	Location model.Location

	// T is the position of Location along the first segment, from 0 at its
	// start to 1 at its end.
	T float64
}

// Intersect returns where segment ab meets segment cd. Collinear and
// parallel segments never meet.
func Intersect(a, b, c, d model.Location) (Crossing, bool) {
	res := lineintersector.LineIntersectsLine(lineintersector.RobustLineIntersector{},
		coord(a), coord(b), coord(c), coord(d))
	if res.Type() != lineintersection.PointIntersection {
		return Crossing{}, false
	}

	x := location(res.Intersection()[0])
	t := param(a, b, x)

	switch t {
	case 0:
		x = a
	case 1:
		x = b
	}

	return Crossing{Location: x, T: t}, true
}

// param returns the parameter along segment ab of the point of ab closest
// to x, clamped to [0, 1].
func param(a, b, x model.Location) float64 {
	rx, ry := float64(b.Lon-a.Lon), float64(b.Lat-a.Lat)
	qx, qy := float64(x.Lon-a.Lon), float64(x.Lat-a.Lat)

	l2 := rx*rx + ry*ry
	if l2 == 0 {
		return 0
	}

	const slack = 1e-12

	t := (qx*rx + qy*ry) / l2

	switch {
	case t < slack:
		return 0
	case t > 1-slack:
		return 1
	}

	return t
}

// Project returns the parameter of the point of segment ab closest to x and
// its distance to x.
func Project(a, b, x model.Location) (float64, float64) {
	return param(a, b, x), xy.DistanceFromPointToLine(coord(x), coord(a), coord(b))
}

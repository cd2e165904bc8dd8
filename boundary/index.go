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
	"github.com/dhconnelly/rtreego"

	"m4o.io/atlas/model"
)

// minExtent keeps degenerate rectangles valid for rtreego.
const minExtent = 1e-9

type countryEntry struct {
	*CountryBoundary
}

// Bounds method for rtreego.Spatial interface.
func (e countryEntry) Bounds() rtreego.Rect {
	return boxRect(e.Box.Left, e.Box.Bottom, e.Box.Right, e.Box.Top)
}

type edgeEntry struct {
	code  string
	ring  int
	index int
	a, b  model.Location
}

// Bounds method for rtreego.Spatial interface.
func (e edgeEntry) Bounds() rtreego.Rect {
	return segmentRect(e.a, e.b)
}

func segmentRect(a, b model.Location) rtreego.Rect {
	return boxRect(min(a.Lon, b.Lon), min(a.Lat, b.Lat), max(a.Lon, b.Lon), max(a.Lat, b.Lat))
}

func pointRect(l model.Location) rtreego.Rect {
	return boxRect(l.Lon, l.Lat, l.Lon, l.Lat)
}

func boxRect(minLon, minLat, maxLon, maxLat model.Degrees) rtreego.Rect {
	point := rtreego.Point{float64(minLon) - minExtent, float64(minLat) - minExtent}
	lengths := []float64{
		float64(maxLon-minLon) + 2*minExtent,
		float64(maxLat-minLat) + 2*minExtent,
	}

	rect, _ := rtreego.NewRect(point, lengths)

	return rect
}

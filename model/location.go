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

package model

import (
	"fmt"
	"strings"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

// EarthRadiusMeters is the mean radius used to turn angular distances into
// meters.
const EarthRadiusMeters = 6_371_008.8

// Location is a position on the earth's surface.
type Location struct {
	Lat Degrees
	Lon Degrees
}

// LocationKey identifies a Location quantized to DefaultTolerance. Two
// locations with the same key are the same place.
type LocationKey struct {
	Lat int64
	Lon int64
}

// NewLocation creates a Location from a latitude and longitude.
func NewLocation(lat, lon Degrees) Location {
	return Location{Lat: lat, Lon: lon}
}

// FromPoint converts a planar orb.Point, whose X is the longitude, into a
// Location.
func FromPoint(p orb.Point) Location {
	return Location{Lat: Degrees(p[1]), Lon: Degrees(p[0])}
}

// Key returns the quantized key of the location.
func (l Location) Key() LocationKey {
	return l.KeyWithin(DefaultTolerance)
}

// KeyWithin returns the key of the location quantized to eps. Locations
// that compare EqualWithin eps share a key.
func (l Location) KeyWithin(eps Epsilon) LocationKey {
	return LocationKey{Lat: l.Lat.Quantize(eps), Lon: l.Lon.Quantize(eps)}
}

// At returns the location a key built with eps stands for.
func (k LocationKey) At(eps Epsilon) Location {
	return Location{Lat: Degrees(float64(k.Lat) * float64(eps)), Lon: Degrees(float64(k.Lon) * float64(eps))}
}

// EqualWithin checks if two locations are within a specific epsilon.
func (l Location) EqualWithin(o Location, eps Epsilon) bool {
	return l.Lat.EqualWithin(o.Lat, eps) && l.Lon.EqualWithin(o.Lon, eps)
}

// Point returns the planar orb.Point of the location.
func (l Location) Point() orb.Point {
	return orb.Point{float64(l.Lon), float64(l.Lat)}
}

// LatLng returns the s2 representation of the location.
func (l Location) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(float64(l.Lat), float64(l.Lon))
}

// Distance returns the great circle distance to o in meters.
func (l Location) Distance(o Location) float64 {
	return l.LatLng().Distance(o.LatLng()).Radians() * EarthRadiusMeters
}

// Midpoint returns the planar midpoint between l and o.
func (l Location) Midpoint(o Location) Location {
	return Location{Lat: (l.Lat + o.Lat) / 2, Lon: (l.Lon + o.Lon) / 2}
}

func (l Location) String() string {
	return ftoa(float64(l.Lat)) + "," + ftoa(float64(l.Lon))
}

// ParseLocation parses a "lat,lon" string.
func ParseLocation(s string) (Location, error) {
	lat, lon, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return Location{}, fmt.Errorf("location %q is not of the form lat,lon", s)
	}

	la, err := ParseDegrees(strings.TrimSpace(lat))
	if err != nil {
		return Location{}, fmt.Errorf("bad latitude in %q: %w", s, err)
	}

	lo, err := ParseDegrees(strings.TrimSpace(lon))
	if err != nil {
		return Location{}, fmt.Errorf("bad longitude in %q: %w", s, err)
	}

	if la < MinLat || la > MaxLat || lo < MinLon || lo > MaxLon {
		return Location{}, fmt.Errorf("location %q is out of range", s)
	}

	return Location{Lat: la, Lon: lo}, nil
}

// Length returns the great circle length of a polyline in meters.
func Length(locations []Location) float64 {
	var total float64

	for i := 1; i < len(locations); i++ {
		total += locations[i-1].Distance(locations[i])
	}

	return total
}

// Reversed returns a reversed copy of the locations.
func Reversed(locations []Location) []Location {
	r := make([]Location, len(locations))

	for i, l := range locations {
		r[len(locations)-1-i] = l
	}

	return r
}

// CollapseDuplicates returns the locations with consecutive duplicates,
// compared within eps, removed. The input is never modified.
func CollapseDuplicates(locations []Location, eps Epsilon) []Location {
	out := make([]Location, 0, len(locations))

	for _, l := range locations {
		if len(out) > 0 && out[len(out)-1].EqualWithin(l, eps) {
			continue
		}

		out = append(out, l)
	}

	return out
}

// HasDistinct reports whether the locations hold at least n distinct
// positions, compared within eps.
func HasDistinct(locations []Location, n int, eps Epsilon) bool {
	var distinct []Location

Outer:
	for _, l := range locations {
		for _, d := range distinct {
			if d.EqualWithin(l, eps) {
				continue Outer
			}
		}

		distinct = append(distinct, l)
		if len(distinct) >= n {
			return true
		}
	}

	return len(distinct) >= n
}

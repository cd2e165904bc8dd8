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

package geometry

import (
	"math"

	"m4o.io/atlas/model"
)

// RingPosition locates a point on a closed ring.
type RingPosition struct {
	Segment  int
	T        float64
	Distance float64
}

// Locate finds the position on ring closest to x. The ring must be closed,
// its last location repeating the first.
func Locate(ring []model.Location, x model.Location) RingPosition {
	best := RingPosition{Distance: math.Inf(1)}

	for i := 0; i+1 < len(ring); i++ {
		t, d := Project(ring[i], ring[i+1], x)
		if d < best.Distance {
			best = RingPosition{Segment: i, T: t, Distance: d}
		}
	}

	return best
}

func (p RingPosition) before(o RingPosition) bool {
	return p.Segment < o.Segment || (p.Segment == o.Segment && p.T <= o.T)
}

// RingPath returns the geodesically shorter of the two walks along a
// closed ring from one position to another. The walk starts at from and
// ends at to exactly.
func RingPath(ring []model.Location, from, to model.Location, pf, pt RingPosition) []model.Location {
	n := len(ring) - 1 // distinct vertices

	forward := []model.Location{from}
	if !pf.before(pt) || pf.Segment != pt.Segment {
		for i := 1; i <= n; i++ {
			v := (pf.Segment + i) % n
			forward = append(forward, ring[v])

			if v == pt.Segment {
				break
			}
		}
	}

	forward = append(forward, to)

	backward := []model.Location{from}
	if !pt.before(pf) || pf.Segment != pt.Segment {
		for i := 0; i < n; i++ {
			v := (pf.Segment - i + n) % n
			backward = append(backward, ring[v])

			if (v-1+n)%n == pt.Segment {
				break
			}
		}
	}

	backward = append(backward, to)

	forward = model.CollapseDuplicates(forward, model.E9)
	backward = model.CollapseDuplicates(backward, model.E9)

	if model.Length(backward) < model.Length(forward) {
		return backward
	}

	return forward
}

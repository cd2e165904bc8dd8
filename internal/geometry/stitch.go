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
	"slices"

	"m4o.io/atlas/model"
)

// Piece is a polyline taking part in a ring.
type Piece struct {
	ID        model.ID
	Locations []model.Location
}

// Chain is a sequence of pieces joined end to end.
type Chain struct {
	Locations []model.Location
	Pieces    []model.ID
}

// First returns the first location of the chain.
func (c *Chain) First() model.Location { return c.Locations[0] }

// Last returns the last location of the chain.
func (c *Chain) Last() model.Location { return c.Locations[len(c.Locations)-1] }

// Closed reports whether the chain forms a ring.
func (c *Chain) Closed(eps model.Epsilon) bool {
	return len(c.Locations) > 3 && c.First().EqualWithin(c.Last(), eps)
}

// Reverse flips the direction of the chain.
func (c *Chain) Reverse() {
	slices.Reverse(c.Locations)
	slices.Reverse(c.Pieces)
}

func (c *Chain) append(locations []model.Location, id model.ID) {
	c.Locations = append(c.Locations, locations[1:]...)
	c.Pieces = append(c.Pieces, id)
}

func (c *Chain) prepend(locations []model.Location, id model.ID) {
	c.Locations = append(slices.Clone(locations[:len(locations)-1]), c.Locations...)
	c.Pieces = append([]model.ID{id}, c.Pieces...)
}

// Stitch joins pieces sharing endpoints into chains. Pieces are reversed as
// needed; the result depends only on the order of the input.
func Stitch(pieces []Piece, eps model.Epsilon) []*Chain {
	used := make([]bool, len(pieces))

	var chains []*Chain

	for i, p := range pieces {
		if used[i] {
			continue
		}

		used[i] = true
		c := &Chain{Locations: slices.Clone(p.Locations), Pieces: []model.ID{p.ID}}

		for !c.Closed(eps) {
			j, ok := extend(c, pieces, used, eps)
			if !ok {
				break
			}

			used[j] = true
		}

		chains = append(chains, c)
	}

	return chains
}

func extend(c *Chain, pieces []Piece, used []bool, eps model.Epsilon) (int, bool) {
	for j, q := range pieces {
		if used[j] {
			continue
		}

		first, last := q.Locations[0], q.Locations[len(q.Locations)-1]

		switch {
		case c.Last().EqualWithin(first, eps):
			c.append(q.Locations, q.ID)
		case c.Last().EqualWithin(last, eps):
			c.append(model.Reversed(q.Locations), q.ID)
		case c.First().EqualWithin(last, eps):
			c.prepend(q.Locations, q.ID)
		case c.First().EqualWithin(first, eps):
			c.prepend(model.Reversed(q.Locations), q.ID)
		default:
			continue
		}

		return j, true
	}

	return 0, false
}

// Split cuts a polyline at the given indices, each cut location ending one
// part and starting the next. Cuts must be strictly increasing interior
// indices.
func Split(locations []model.Location, cuts []int) [][]model.Location {
	parts := make([][]model.Location, 0, len(cuts)+1)
	start := 0

	for _, c := range cuts {
		parts = append(parts, locations[start:c+1])
		start = c
	}

	return append(parts, locations[start:])
}

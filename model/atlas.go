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
	"iter"
)

type store[T Entity] struct {
	byID map[ID]T
	ids  []ID
}

func newStore[T Entity](byID map[ID]T) store[T] {
	return store[T]{byID: byID, ids: SortedKeys(byID)}
}

func (s store[T]) all() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, id := range s.ids {
			if !yield(s.byID[id]) {
				return
			}
		}
	}
}

func (s store[T]) get(id ID) (T, bool) {
	e, ok := s.byID[id]

	return e, ok
}

// Atlas is an immutable collection of points, lines, relations, nodes and
// edges. Iteration is always in ascending ID order. An Atlas is safe for
// concurrent reads.
type Atlas struct {
	meta      Metadata
	points    store[Point]
	lines     store[Line]
	relations store[Relation]
	nodes     store[Node]
	edges     store[Edge]

	pointsAt map[LocationKey][]ID
	bounds   *BoundingBox
}

func (a *Atlas) Metadata() Metadata { return a.meta.Clone() }

func (a *Atlas) Points() iter.Seq[Point]       { return a.points.all() }
func (a *Atlas) Lines() iter.Seq[Line]         { return a.lines.all() }
func (a *Atlas) Relations() iter.Seq[Relation] { return a.relations.all() }
func (a *Atlas) Nodes() iter.Seq[Node]         { return a.nodes.all() }
func (a *Atlas) Edges() iter.Seq[Edge]         { return a.edges.all() }

func (a *Atlas) Point(id ID) (Point, bool)       { return a.points.get(id) }
func (a *Atlas) Line(id ID) (Line, bool)         { return a.lines.get(id) }
func (a *Atlas) Relation(id ID) (Relation, bool) { return a.relations.get(id) }
func (a *Atlas) Node(id ID) (Node, bool)         { return a.nodes.get(id) }
func (a *Atlas) Edge(id ID) (Edge, bool)         { return a.edges.get(id) }

func (a *Atlas) NumberOfPoints() int    { return len(a.points.ids) }
func (a *Atlas) NumberOfLines() int     { return len(a.lines.ids) }
func (a *Atlas) NumberOfRelations() int { return len(a.relations.ids) }
func (a *Atlas) NumberOfNodes() int     { return len(a.nodes.ids) }
func (a *Atlas) NumberOfEdges() int     { return len(a.edges.ids) }

// Entity looks up an entity by type and ID.
func (a *Atlas) Entity(t EntityType, id ID) (Entity, bool) {
	var (
		e  Entity
		ok bool
	)

	switch t {
	case POINT:
		e, ok = a.Point(id)
	case LINE:
		e, ok = a.Line(id)
	case RELATION:
		e, ok = a.Relation(id)
	case NODE:
		e, ok = a.Node(id)
	case EDGE:
		e, ok = a.Edge(id)
	default:
		panic(fmt.Sprintf("unknown entity type %d", int32(t)))
	}

	if !ok {
		return nil, false
	}

	return e, true
}

// Contains reports whether the entity a member refers to is present.
func (a *Atlas) Contains(m Member) bool {
	_, ok := a.Entity(m.Type, m.ID)

	return ok
}

// PointsAt returns the points located at l, lowest ID first.
func (a *Atlas) PointsAt(l Location) []Point {
	ids := a.pointsAt[l.Key()]
	points := make([]Point, 0, len(ids))

	for _, id := range ids {
		points = append(points, a.points.byID[id])
	}

	return points
}

// Bounds returns the bounding box of every location in the atlas, or nil
// when the atlas has no geometry.
func (a *Atlas) Bounds() *BoundingBox {
	if a.bounds == nil {
		return nil
	}

	b := *a.bounds

	return &b
}

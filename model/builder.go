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
	"slices"
	"sync"
)

// Builder stages entities for an Atlas. It is safe for concurrent use and
// is frozen exactly once.
type Builder struct {
	mu     sync.Mutex
	frozen bool

	meta      Metadata
	points    map[ID]Point
	lines     map[ID]Line
	relations map[ID]Relation
	nodes     map[ID]Node
	edges     map[ID]Edge
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		points:    make(map[ID]Point),
		lines:     make(map[ID]Line),
		relations: make(map[ID]Relation),
		nodes:     make(map[ID]Node),
		edges:     make(map[ID]Edge),
	}
}

// SetMetadata replaces the metadata of the atlas being built.
func (b *Builder) SetMetadata(m Metadata) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frozen {
		return ErrFrozen
	}

	b.meta = m.Clone()

	return nil
}

// Add stages any entity. Tags, locations and members are copied.
func (b *Builder) Add(e Entity) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frozen {
		return ErrFrozen
	}

	switch e := e.(type) {
	case Point:
		e.Tags = e.Tags.Clone()

		return put(b.points, e)
	case Line:
		if len(e.Locations) < 2 {
			return NewFeatureError(ErrGeometry, LINE, e.ID, "%d locations", len(e.Locations))
		}

		e.Locations = slices.Clone(e.Locations)
		e.Tags = e.Tags.Clone()

		return put(b.lines, e)
	case Relation:
		e.Members = slices.Clone(e.Members)
		e.Tags = e.Tags.Clone()

		return put(b.relations, e)
	case Node:
		e.Tags = e.Tags.Clone()

		return put(b.nodes, e)
	case Edge:
		if len(e.Locations) < 2 {
			return NewFeatureError(ErrGeometry, EDGE, e.ID, "%d locations", len(e.Locations))
		}

		e.Locations = slices.Clone(e.Locations)
		e.Tags = e.Tags.Clone()

		return put(b.edges, e)
	default:
		panic(fmt.Sprintf("unknown entity %T", e))
	}
}

// AddAll stages every entity, stopping at the first failure.
func (b *Builder) AddAll(entities ...Entity) error {
	for _, e := range entities {
		if err := b.Add(e); err != nil {
			return err
		}
	}

	return nil
}

func put[T Entity](m map[ID]T, e T) error {
	if _, ok := m[e.GetID()]; ok {
		return fmt.Errorf("%s %d: %w", e.Type(), e.GetID(), ErrDuplicateID)
	}

	m[e.GetID()] = e

	return nil
}

// Freeze turns the staged entities into an immutable Atlas. Any later call
// to the builder fails with ErrFrozen.
func (b *Builder) Freeze() (*Atlas, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frozen {
		return nil, ErrFrozen
	}

	b.frozen = true

	a := &Atlas{
		meta:      b.meta,
		points:    newStore(b.points),
		lines:     newStore(b.lines),
		relations: newStore(b.relations),
		nodes:     newStore(b.nodes),
		edges:     newStore(b.edges),
		pointsAt:  make(map[LocationKey][]ID),
	}

	var bbox *BoundingBox

	expand := func(l Location) {
		if bbox == nil {
			bbox = InitialBoundingBox()
		}

		bbox.ExpandWithLatLng(l.Lat, l.Lon)
	}

	for _, id := range a.points.ids {
		p := b.points[id]
		a.pointsAt[p.Location.Key()] = append(a.pointsAt[p.Location.Key()], id)
		expand(p.Location)
	}

	for _, l := range b.lines {
		for _, loc := range l.Locations {
			expand(loc)
		}
	}

	for _, n := range b.nodes {
		expand(n.Location)
	}

	for _, e := range b.edges {
		for _, loc := range e.Locations {
			expand(loc)
		}
	}

	a.bounds = bbox

	return a, nil
}

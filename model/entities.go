// Copyright 2017-25 the original author or authors.
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

// Package model contains the shared atlas model used by the slicing and
// sectioning transforms.
package model

import (
	"fmt"
	"strings"
)

// Entity is one of Point, Line, Relation, Node or Edge.
type Entity interface {
	isEntity() // prevents extensions

	GetID() ID

	GetTags() Tags

	Type() EntityType
}

// ID is the primary key of an entity.
type ID int64

// EntityType is an enumeration of atlas entity types.
type EntityType int32

const (
	// POINT denotes a raw point feature.
	POINT EntityType = iota

	// LINE denotes a raw polyline.
	LINE

	// RELATION denotes a grouping of other entities.
	RELATION

	// NODE denotes a routing graph node.
	NODE

	// EDGE denotes a directed routing graph edge.
	EDGE
)

// MemberType is the type of the entity a relation Member refers to.
type MemberType = EntityType

var entityTypeNames = [...]string{
	POINT:    "POINT",
	LINE:     "LINE",
	RELATION: "RELATION",
	NODE:     "NODE",
	EDGE:     "EDGE",
}

func (t EntityType) String() string {
	if t < 0 || int(t) >= len(entityTypeNames) {
		panic(fmt.Sprintf("unknown entity type %d", int32(t)))
	}

	return entityTypeNames[t]
}

// ParseEntityType is the inverse of EntityType.String and is case-insensitive.
func ParseEntityType(s string) (EntityType, error) {
	for i, name := range entityTypeNames {
		if strings.EqualFold(name, s) {
			return EntityType(i), nil
		}
	}

	return 0, fmt.Errorf("unknown entity type %q", s)
}

// Point is a single tagged location.
type Point struct {
	ID       ID
	Location Location
	Tags     Tags
}

var _ Entity = Point{}

func (p Point) isEntity() {}

func (p Point) GetID() ID {
	return p.ID
}

func (p Point) GetTags() Tags {
	return p.Tags
}

func (p Point) Type() EntityType {
	return POINT
}

// Line is an ordered polyline of at least two locations.
type Line struct {
	ID        ID
	Locations []Location
	Tags      Tags
}

var _ Entity = Line{}

func (l Line) isEntity() {}

func (l Line) GetID() ID {
	return l.ID
}

func (l Line) GetTags() Tags {
	return l.Tags
}

func (l Line) Type() EntityType {
	return LINE
}

// IsClosed reports whether the first and last locations coincide.
func (l Line) IsClosed() bool {
	n := len(l.Locations)

	return n > 2 && l.Locations[0].EqualWithin(l.Locations[n-1], DefaultTolerance)
}

// Bounds returns the bounding box of the line's locations.
func (l Line) Bounds() *BoundingBox {
	return FromLocations(l.Locations)
}

// Member is a reference from a relation to another entity.
type Member struct {
	Type MemberType
	ID   ID
	Role string
}

func (m Member) String() string {
	return fmt.Sprintf("%s:%d:%s", m.Type, m.ID, m.Role)
}

// Relation is a multipurpose grouping of other entities.
type Relation struct {
	ID      ID
	Members []Member
	Tags    Tags
}

var _ Entity = Relation{}

func (r Relation) isEntity() {}

func (r Relation) GetID() ID {
	return r.ID
}

func (r Relation) GetTags() Tags {
	return r.Tags
}

func (r Relation) Type() EntityType {
	return RELATION
}

// IsMultiPolygon reports whether the relation describes an area made of
// outer and inner rings.
func (r Relation) IsMultiPolygon() bool {
	t := r.Tags.Get(TagType)

	return t == TypeMultiPolygon || t == TypeBoundary
}

// Node is a vertex of the routing graph.
type Node struct {
	ID       ID
	Location Location
	Tags     Tags
}

var _ Entity = Node{}

func (n Node) isEntity() {}

func (n Node) GetID() ID {
	return n.ID
}

func (n Node) GetTags() Tags {
	return n.Tags
}

func (n Node) Type() EntityType {
	return NODE
}

// Direction tells whether an edge follows its parent line's digitization.
type Direction int8

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		panic(fmt.Sprintf("unknown direction %d", int8(d)))
	}
}

// Edge is a directed section of a routable line between two nodes.
type Edge struct {
	ID        ID
	Locations []Location
	Start     ID
	End       ID
	Tags      Tags
	Direction Direction
	Opposite  ID // zero for one-way sections
}

var _ Entity = Edge{}

func (e Edge) isEntity() {}

func (e Edge) GetID() ID {
	return e.ID
}

func (e Edge) GetTags() Tags {
	return e.Tags
}

func (e Edge) Type() EntityType {
	return EDGE
}

// IsMain reports whether the edge follows the digitization of its line.
func (e Edge) IsMain() bool {
	return e.ID > 0
}

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
	"maps"
	"strings"
)

// Well known tag keys and values.
const (
	TagISOCountryCode = "iso_country_code"

	// CountryUnresolved marks an entity whose country could not be determined.
	CountryUnresolved = "N/A"

	TagSyntheticBoundaryNode        = "synthetic_boundary_node"
	TagSyntheticBoundaryLine        = "synthetic_boundary_line"
	TagSyntheticInvalidMultiPolygon = "synthetic_invalid_multipolygon"

	TagType          = "type"
	TypeMultiPolygon = "multipolygon"
	TypeBoundary     = "boundary"

	RoleOuter = "outer"
	RoleInner = "inner"

	TagOneway          = "oneway"
	TagJunction        = "junction"
	JunctionRoundabout = "roundabout"

	Yes = "yes"
)

// Tags is a free-form set of key/value pairs.
type Tags map[string]string

// Get returns the value of key, or the empty string.
func (t Tags) Get(key string) string {
	return t[key]
}

// Has reports whether key is present.
func (t Tags) Has(key string) bool {
	_, ok := t[key]

	return ok
}

// HasAny reports whether any of the keys is present.
func (t Tags) HasAny(keys []string) bool {
	for _, k := range keys {
		if t.Has(k) {
			return true
		}
	}

	return false
}

// Clone returns a copy that can be modified without affecting t.
func (t Tags) Clone() Tags {
	c := make(Tags, len(t)+1)
	maps.Copy(c, t)

	return c
}

// With returns a copy of t with key set to value.
func (t Tags) With(key, value string) Tags {
	c := t.Clone()
	c[key] = value

	return c
}

// Country returns the country code tag, or CountryUnresolved when missing.
func (t Tags) Country() string {
	if c, ok := t[TagISOCountryCode]; ok && c != "" {
		return c
	}

	return CountryUnresolved
}

func (t Tags) String() string {
	var sb strings.Builder

	for i, k := range SortedKeys(t) {
		if i > 0 {
			sb.WriteByte('|')
		}

		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(t[k])
	}

	return sb.String()
}

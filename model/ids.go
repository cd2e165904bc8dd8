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

	"golang.org/x/exp/constraints"
)

const (
	// SubIDFactor is the multiplier applied to a parent ID to make room for
	// derived IDs.
	SubIDFactor = 1000

	// MaxSubIndex is the largest index a derived ID can carry.
	MaxSubIndex = SubIDFactor - 1
)

// SubID returns the ID derived from parent for the given index, which must be
// in [1, MaxSubIndex].
func SubID(parent ID, index int) (ID, error) {
	if index < 1 || index > MaxSubIndex {
		return 0, fmt.Errorf("sub index %d of %d out of range [1, %d]", index, parent, MaxSubIndex)
	}

	return parent*SubIDFactor + ID(index), nil
}

// ParentID is the inverse of SubID.
func ParentID(id ID) ID {
	if id < 0 {
		id = -id
	}

	return id / SubIDFactor
}

// LocationID returns the negative ID of a synthetic node placed at l. The
// same location always yields the same ID.
func LocationID(l Location) ID {
	lat := int64(l.Lat.E7()) + 900_000_000
	lon := int64(l.Lon.E7()) + 1_800_000_000

	return ID(-((lat << 32) | lon))
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

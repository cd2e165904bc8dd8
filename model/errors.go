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
	"errors"
	"fmt"
)

// Feature level failure kinds. A FeatureError wraps exactly one of them.
var (
	ErrGeometry           = errors.New("geometry error")
	ErrCountryResolution  = errors.New("country resolution error")
	ErrTopologyRepair     = errors.New("topology repair error")
	ErrReferenceIntegrity = errors.New("reference integrity error")
	ErrIDCollision        = errors.New("id collision error")
)

// Builder failures.
var (
	ErrFrozen      = errors.New("builder is frozen")
	ErrDuplicateID = errors.New("duplicate id")
)

// FeatureError reports why a single entity could not be processed.
type FeatureError struct {
	Kind   error
	Type   EntityType
	ID     ID
	Reason string
}

// NewFeatureError creates a FeatureError with a formatted reason.
func NewFeatureError(kind error, t EntityType, id ID, format string, args ...any) *FeatureError {
	return &FeatureError{Kind: kind, Type: t, ID: id, Reason: fmt.Sprintf(format, args...)}
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("%s %d: %s: %s", e.Type, e.ID, e.Kind, e.Reason)
}

func (e *FeatureError) Unwrap() error {
	return e.Kind
}

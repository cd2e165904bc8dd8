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
	"time"
)

// Metadata describes where an atlas came from and which transforms it went
// through.
type Metadata struct {
	Source         string
	WritingProgram string
	Timestamp      time.Time

	// Countries lists the country codes the atlas was sliced against.
	Countries []string
	Sliced    bool
	Sectioned bool
}

// Clone returns a deep copy of the metadata.
func (m Metadata) Clone() Metadata {
	c := m
	c.Countries = append([]string(nil), m.Countries...)

	return c
}

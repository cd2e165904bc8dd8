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

// Package atlastext reads and writes atlases in a line oriented plain text
// format:
//
//	# Metadata
//	source || greater-london
//	# Points
//	<id> || <lat,lon> || <k=v|k=v>
//	# Lines
//	<id> || <lat,lon lat,lon ...> || <tags>
//	# Relations
//	<id> || <TYPE:id:role TYPE:id:role ...> || <tags>
//	# Nodes
//	<id> || <lat,lon> || <tags>
//	# Edges
//	<id> || <locations> || <start> || <end> || <forward|backward> || <opposite> || <tags>
//
// Blank lines and lines starting with // are ignored. Tag keys and values
// cannot contain "|" or "=".
package atlastext

import (
	"errors"
	"fmt"

	"m4o.io/atlas/internal/compress"
	"m4o.io/atlas/model"
)

const (
	separator = " || "

	sectionMetadata  = "# Metadata"
	sectionPoints    = "# Points"
	sectionLines     = "# Lines"
	sectionRelations = "# Relations"
	sectionNodes     = "# Nodes"
	sectionEdges     = "# Edges"
)

var ErrSyntax = errors.New("atlas text syntax error")

// Load reads an atlas file, decompressing it according to its extension.
func Load(path string) (*model.Atlas, error) {
	r, err := compress.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	a, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("cannot load %s: %w", path, err)
	}

	return a, nil
}

// Save writes an atlas file, compressing it according to its extension.
func Save(path string, a *model.Atlas) (err error) {
	w, err := compress.Create(path)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	return Write(w, a)
}

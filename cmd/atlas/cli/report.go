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

package cli

import (
	"fmt"
	"io"

	humanize "github.com/dustin/go-humanize"

	"m4o.io/atlas"
	"m4o.io/atlas/model"
)

// ReportFailures prints the number of failed features per kind.
func ReportFailures(w io.Writer, s *atlas.Summary) {
	byKind := s.FailuresByKind()

	for _, kind := range model.SortedKeys(byKind) {
		fmt.Fprintf(w, "%s: %s\n", kind, humanize.Comma(int64(byKind[kind])))
	}
}

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

package atlastext

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
	"time"

	"m4o.io/atlas/model"
)

// Write encodes the atlas, entities in ascending ID order. Empty sections
// are left out.
func Write(w io.Writer, a *model.Atlas) error {
	bw := bufio.NewWriter(w)

	writeMetadata(bw, a.Metadata())

	writeSection(bw, sectionPoints, a.Points(), func(p model.Point) []string {
		return []string{id(p.ID), p.Location.String(), p.Tags.String()}
	})
	writeSection(bw, sectionLines, a.Lines(), func(l model.Line) []string {
		return []string{id(l.ID), locations(l.Locations), l.Tags.String()}
	})
	writeSection(bw, sectionRelations, a.Relations(), func(r model.Relation) []string {
		return []string{id(r.ID), members(r.Members), r.Tags.String()}
	})
	writeSection(bw, sectionNodes, a.Nodes(), func(n model.Node) []string {
		return []string{id(n.ID), n.Location.String(), n.Tags.String()}
	})
	writeSection(bw, sectionEdges, a.Edges(), func(e model.Edge) []string {
		return []string{
			id(e.ID), locations(e.Locations), id(e.Start), id(e.End),
			e.Direction.String(), id(e.Opposite), e.Tags.String(),
		}
	})

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("cannot write atlas: %w", err)
	}

	return nil
}

func writeMetadata(w *bufio.Writer, m model.Metadata) {
	var rows [][]string

	if m.Source != "" {
		rows = append(rows, []string{"source", m.Source})
	}

	if m.WritingProgram != "" {
		rows = append(rows, []string{"writing_program", m.WritingProgram})
	}

	if !m.Timestamp.IsZero() {
		rows = append(rows, []string{"timestamp", m.Timestamp.UTC().Format(time.RFC3339)})
	}

	if len(m.Countries) > 0 {
		rows = append(rows, []string{"countries", strings.Join(m.Countries, " ")})
	}

	if m.Sliced {
		rows = append(rows, []string{"sliced", "true"})
	}

	if m.Sectioned {
		rows = append(rows, []string{"sectioned", "true"})
	}

	if len(rows) == 0 {
		return
	}

	w.WriteString(sectionMetadata + "\n")

	for _, r := range rows {
		writeRow(w, r)
	}
}

func writeSection[T model.Entity](w *bufio.Writer, header string, entities iter.Seq[T], encode func(T) []string) {
	first := true

	for e := range entities {
		if first {
			w.WriteString(header + "\n")
			first = false
		}

		writeRow(w, encode(e))
	}
}

func writeRow(w *bufio.Writer, fields []string) {
	w.WriteString(strings.TrimRight(strings.Join(fields, separator), " "))
	w.WriteByte('\n')
}

func id(i model.ID) string {
	return strconv.FormatInt(int64(i), 10)
}

func locations(locs []model.Location) string {
	parts := make([]string, len(locs))
	for i, l := range locs {
		parts[i] = l.String()
	}

	return strings.Join(parts, " ")
}

func members(ms []model.Member) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.String()
	}

	return strings.Join(parts, " ")
}

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
	"strconv"
	"strings"
	"time"

	"m4o.io/atlas/model"
)

type decoder struct {
	builder *model.Builder
	meta    model.Metadata
	section string
	line    int
}

// Read parses an atlas. Entities may appear in any order within a section.
func Read(r io.Reader) (*model.Atlas, error) {
	d := &decoder{builder: model.NewBuilder()}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	for scanner.Scan() {
		d.line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "//") {
			continue
		}

		if strings.HasPrefix(text, "#") {
			if err := d.enter(text); err != nil {
				return nil, err
			}

			continue
		}

		if err := d.decode(text); err != nil {
			return nil, fmt.Errorf("line %d: %w", d.line, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if err := d.builder.SetMetadata(d.meta); err != nil {
		return nil, err
	}

	return d.builder.Freeze()
}

func (d *decoder) enter(header string) error {
	switch header {
	case sectionMetadata, sectionPoints, sectionLines, sectionRelations, sectionNodes, sectionEdges:
		d.section = header

		return nil
	default:
		return fmt.Errorf("line %d: %w: unknown section %q", d.line, ErrSyntax, header)
	}
}

func (d *decoder) decode(text string) error {
	fields := split(text)

	if d.section == sectionMetadata {
		return d.decodeMetadata(fields)
	}

	var (
		e   model.Entity
		err error
	)

	switch d.section {
	case sectionPoints:
		e, err = decodePoint(fields)
	case sectionLines:
		e, err = decodeLine(fields)
	case sectionRelations:
		e, err = decodeRelation(fields)
	case sectionNodes:
		e, err = decodeNode(fields)
	case sectionEdges:
		e, err = decodeEdge(fields)
	default:
		return fmt.Errorf("%w: entity outside of a section", ErrSyntax)
	}

	if err != nil {
		return err
	}

	return d.builder.Add(e)
}

func split(text string) []string {
	fields := strings.Split(text, strings.TrimSpace(separator))
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	return fields
}

func (d *decoder) decodeMetadata(fields []string) error {
	if len(fields) != 2 {
		return fmt.Errorf("%w: metadata needs key || value", ErrSyntax)
	}

	var err error

	switch fields[0] {
	case "source":
		d.meta.Source = fields[1]
	case "writing_program":
		d.meta.WritingProgram = fields[1]
	case "timestamp":
		d.meta.Timestamp, err = time.Parse(time.RFC3339, fields[1])
	case "countries":
		d.meta.Countries = strings.Fields(fields[1])
	case "sliced":
		d.meta.Sliced, err = strconv.ParseBool(fields[1])
	case "sectioned":
		d.meta.Sectioned, err = strconv.ParseBool(fields[1])
	default:
		return fmt.Errorf("%w: unknown metadata %q", ErrSyntax, fields[0])
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrSyntax, err)
	}

	return nil
}

func expect(fields []string, n int, what string) error {
	// a trailing empty tag field may be left out
	if len(fields) != n && len(fields) != n-1 {
		return fmt.Errorf("%w: %s needs %d fields, got %d", ErrSyntax, what, n, len(fields))
	}

	return nil
}

func tagsField(fields []string, n int) (model.Tags, error) {
	if len(fields) < n {
		return model.Tags{}, nil
	}

	return decodeTags(fields[n-1])
}

func decodeID(s string) (model.ID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad id %q", ErrSyntax, s)
	}

	return model.ID(id), nil
}

func decodeLocations(s string) ([]model.Location, error) {
	parts := strings.Fields(s)
	locations := make([]model.Location, 0, len(parts))

	for _, p := range parts {
		l, err := model.ParseLocation(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
		}

		locations = append(locations, l)
	}

	return locations, nil
}

func decodeTags(s string) (model.Tags, error) {
	tags := model.Tags{}
	if s == "" {
		return tags, nil
	}

	for _, kv := range strings.Split(s, "|") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: bad tag %q", ErrSyntax, kv)
		}

		tags[k] = v
	}

	return tags, nil
}

func decodeMembers(s string) ([]model.Member, error) {
	parts := strings.Fields(s)
	members := make([]model.Member, 0, len(parts))

	for _, p := range parts {
		fields := strings.SplitN(p, ":", 3)
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: bad member %q", ErrSyntax, p)
		}

		t, err := model.ParseEntityType(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
		}

		id, err := decodeID(fields[1])
		if err != nil {
			return nil, err
		}

		members = append(members, model.Member{Type: t, ID: id, Role: fields[2]})
	}

	return members, nil
}

func decodePoint(fields []string) (model.Entity, error) {
	if err := expect(fields, 3, "point"); err != nil {
		return nil, err
	}

	id, err := decodeID(fields[0])
	if err != nil {
		return nil, err
	}

	l, err := model.ParseLocation(fields[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}

	tags, err := tagsField(fields, 3)
	if err != nil {
		return nil, err
	}

	return model.Point{ID: id, Location: l, Tags: tags}, nil
}

func decodeNode(fields []string) (model.Entity, error) {
	p, err := decodePoint(fields)
	if err != nil {
		return nil, err
	}

	point := p.(model.Point)

	return model.Node{ID: point.ID, Location: point.Location, Tags: point.Tags}, nil
}

func decodeLine(fields []string) (model.Entity, error) {
	if err := expect(fields, 3, "line"); err != nil {
		return nil, err
	}

	id, err := decodeID(fields[0])
	if err != nil {
		return nil, err
	}

	locations, err := decodeLocations(fields[1])
	if err != nil {
		return nil, err
	}

	tags, err := tagsField(fields, 3)
	if err != nil {
		return nil, err
	}

	return model.Line{ID: id, Locations: locations, Tags: tags}, nil
}

func decodeRelation(fields []string) (model.Entity, error) {
	if err := expect(fields, 3, "relation"); err != nil {
		return nil, err
	}

	id, err := decodeID(fields[0])
	if err != nil {
		return nil, err
	}

	members, err := decodeMembers(fields[1])
	if err != nil {
		return nil, err
	}

	tags, err := tagsField(fields, 3)
	if err != nil {
		return nil, err
	}

	return model.Relation{ID: id, Members: members, Tags: tags}, nil
}

func decodeEdge(fields []string) (model.Entity, error) {
	if err := expect(fields, 7, "edge"); err != nil {
		return nil, err
	}

	var ids [4]model.ID

	for i, f := range []string{fields[0], fields[2], fields[3], fields[5]} {
		id, err := decodeID(f)
		if err != nil {
			return nil, err
		}

		ids[i] = id
	}

	locations, err := decodeLocations(fields[1])
	if err != nil {
		return nil, err
	}

	var direction model.Direction

	switch fields[4] {
	case model.Forward.String():
		direction = model.Forward
	case model.Backward.String():
		direction = model.Backward
	default:
		return nil, fmt.Errorf("%w: bad direction %q", ErrSyntax, fields[4])
	}

	tags, err := tagsField(fields, 7)
	if err != nil {
		return nil, err
	}

	return model.Edge{
		ID:        ids[0],
		Locations: locations,
		Start:     ids[1],
		End:       ids[2],
		Direction: direction,
		Opposite:  ids[3],
		Tags:      tags,
	}, nil
}

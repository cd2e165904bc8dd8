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

// Package ingest builds raw atlases out of OpenStreetMap extracts.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"

	"m4o.io/atlas/internal/compress"
	"m4o.io/atlas/model"
)

// WritingProgram is recorded in the metadata of ingested atlases.
const WritingProgram = "atlas-ingest"

// IDPadding multiplies every OSM identifier. Padded IDs end in three
// zeros while every sub ID ends in its non zero index, so IDs derived by
// slicing and sectioning never reuse an ingested one.
const IDPadding = model.SubIDFactor

// PaddedID returns the atlas ID of an OSM identifier.
func PaddedID(id int64) model.ID {
	return model.ID(id) * IDPadding
}

// LoadOSMXML reads an OSM XML file, decompressing it according to its
// extension.
func LoadOSMXML(ctx context.Context, path string) (*model.Atlas, []*model.FeatureError, error) {
	r, err := compress.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	a, failures, err := ReadOSMXML(ctx, r)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot ingest %s: %w", path, err)
	}

	return a, failures, nil
}

// ReadOSMXML maps nodes to points, ways to lines and relations to
// relations, all with padded IDs. Way locations are resolved from the
// nodes read before the way; ways left with fewer than two locations are
// reported as geometry failures and skipped.
func ReadOSMXML(ctx context.Context, r io.Reader) (*model.Atlas, []*model.FeatureError, error) {
	scanner := osmxml.New(ctx, r)
	defer scanner.Close()

	var failures []*model.FeatureError

	b := model.NewBuilder()
	locations := make(map[osm.NodeID]model.Location)

	for scanner.Scan() {
		var err error

		switch o := scanner.Object().(type) {
		case *osm.Node:
			l := model.NewLocation(model.Degrees(o.Lat), model.Degrees(o.Lon))
			locations[o.ID] = l

			err = b.Add(model.Point{ID: PaddedID(int64(o.ID)), Location: l, Tags: tags(o.Tags)})
		case *osm.Way:
			l, failure := line(o, locations)
			if failure != nil {
				slog.Debug("way skipped", "error", failure)
				failures = append(failures, failure)

				continue
			}

			err = b.Add(l)
		case *osm.Relation:
			err = b.Add(model.Relation{ID: PaddedID(int64(o.ID)), Members: members(o.Members), Tags: tags(o.Tags)})
		}

		if err != nil {
			return nil, nil, err
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}

	if err := b.SetMetadata(model.Metadata{WritingProgram: WritingProgram}); err != nil {
		return nil, nil, err
	}

	a, err := b.Freeze()
	if err != nil {
		return nil, nil, err
	}

	return a, failures, nil
}

func line(w *osm.Way, locations map[osm.NodeID]model.Location) (model.Line, *model.FeatureError) {
	locs := make([]model.Location, 0, len(w.Nodes))

	for _, n := range w.Nodes {
		if l, ok := locations[n.ID]; ok {
			locs = append(locs, l)

			continue
		}

		// some extracts carry the locations on the way itself
		if n.Lat != 0 || n.Lon != 0 {
			locs = append(locs, model.NewLocation(model.Degrees(n.Lat), model.Degrees(n.Lon)))
		}
	}

	id := PaddedID(int64(w.ID))

	if len(locs) < 2 {
		return model.Line{}, model.NewFeatureError(model.ErrGeometry, model.LINE, id,
			"%d of %d way nodes resolved", len(locs), len(w.Nodes))
	}

	return model.Line{ID: id, Locations: locs, Tags: tags(w.Tags)}, nil
}

func tags(t osm.Tags) model.Tags {
	if len(t) == 0 {
		return nil
	}

	return model.Tags(t.Map())
}

func members(ms osm.Members) []model.Member {
	out := make([]model.Member, 0, len(ms))

	for _, m := range ms {
		var t model.MemberType

		switch m.Type {
		case osm.TypeNode:
			t = model.POINT
		case osm.TypeWay:
			t = model.LINE
		case osm.TypeRelation:
			t = model.RELATION
		default:
			continue
		}

		out = append(out, model.Member{Type: t, ID: PaddedID(m.Ref), Role: m.Role})
	}

	return out
}

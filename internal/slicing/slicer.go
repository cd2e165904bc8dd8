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

// Package slicing cuts the features of an atlas along country borders.
package slicing

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/destel/rill"

	"m4o.io/atlas/boundary"
	"m4o.io/atlas/config"
	"m4o.io/atlas/model"
)

// Stats counts what a slicing run produced besides the carried over
// entities.
type Stats struct {
	SplitLines      int
	LinePieces      int
	SyntheticPoints int
	ClosingLines    int
	RelationCopies  int
}

type slicer struct {
	atlas      *model.Atlas
	boundaries *boundary.CountryBoundaryMap
	cfg        config.LoadingOption
	tolerance  model.Epsilon
	logger     *slog.Logger

	lines     map[model.ID]slicedLine
	points    map[model.ID]string // retained point -> country
	countries map[model.ID][]string
	cyclic    map[model.ID]bool

	// collided holds the multi-country relations whose copy IDs are taken
	// by relations of the input; they are kept whole.
	collided map[model.ID]bool
}

// Slice partitions every point, line and relation of the atlas across the
// countries of the boundary map the configuration recognizes.
func Slice(ctx context.Context, atlas *model.Atlas, boundaries *boundary.CountryBoundaryMap,
	cfg config.LoadingOption, logger *slog.Logger,
) (*model.Atlas, []*model.FeatureError, Stats, error) {
	s := &slicer{
		atlas:      atlas,
		boundaries: boundaries.Filter(cfg.Recognizes),
		cfg:        cfg,
		tolerance:  cfg.Tolerance,
		logger:     logger,
		lines:      make(map[model.ID]slicedLine),
		points:     make(map[model.ID]string),
	}

	return s.run(ctx)
}

func (s *slicer) run(ctx context.Context) (*model.Atlas, []*model.FeatureError, Stats, error) {
	var (
		stats    Stats
		failures []*model.FeatureError
	)

	b := model.NewBuilder()

	meta := s.atlas.Metadata()
	meta.Sliced = true
	meta.Countries = s.boundaries.Codes()

	if err := b.SetMetadata(meta); err != nil {
		return nil, nil, stats, err
	}

	sliced, err := parallel(ctx, slices.Collect(s.atlas.Lines()), s.cfg.Workers, s.sliceLine)
	if err != nil {
		return nil, nil, stats, fmt.Errorf("slicing lines: %w", err)
	}

	for _, sl := range sliced {
		s.lines[sl.line.ID] = sl

		if sl.failure != nil {
			failures = append(failures, sl.failure)

			continue
		}

		if len(sl.pieces) > 1 {
			stats.SplitLines++
		}

		for _, p := range sl.pieces {
			stats.LinePieces++

			if err := b.Add(model.Line{ID: p.id, Locations: p.locations, Tags: sl.line.Tags.With(model.TagISOCountryCode, p.country)}); err != nil {
				return nil, nil, stats, err
			}
		}
	}

	points, synthetic, collisions := s.slicePoints(sliced)
	stats.SyntheticPoints = synthetic
	failures = append(failures, collisions...)

	for _, p := range points {
		if err := b.Add(p); err != nil {
			return nil, nil, stats, err
		}
	}

	s.resolveCountries()

	relations, err := parallel(ctx, slices.Collect(s.atlas.Relations()), s.cfg.Workers, s.sliceRelation)
	if err != nil {
		return nil, nil, stats, fmt.Errorf("slicing relations: %w", err)
	}

	for _, r := range relations {
		failures = append(failures, r.failures...)

		if len(r.relations) > 1 {
			stats.RelationCopies += len(r.relations)
		}

		stats.ClosingLines += len(r.closing)

		for _, l := range r.closing {
			if err := b.Add(l); err != nil {
				return nil, nil, stats, err
			}
		}

		for _, rel := range r.relations {
			if err := b.Add(rel); err != nil {
				return nil, nil, stats, err
			}
		}
	}

	for n := range s.atlas.Nodes() {
		if err := b.Add(n); err != nil {
			return nil, nil, stats, err
		}
	}

	for e := range s.atlas.Edges() {
		if err := b.Add(e); err != nil {
			return nil, nil, stats, err
		}
	}

	for _, f := range failures {
		s.logger.Debug("feature not sliced", "error", f)
	}

	a, err := b.Freeze()
	if err != nil {
		return nil, nil, stats, err
	}

	return a, failures, stats, nil
}

// countryOf returns the lowest code of the countries holding l, or the
// unresolved marker.
func (s *slicer) countryOf(l model.Location) string {
	if code, ok := s.boundaries.CountryAt(l); ok {
		return code
	}

	return model.CountryUnresolved
}

// parallel maps f over the entities with n workers, preserving order.
func parallel[A, B any](ctx context.Context, entities []A, n int, f func(A) B) ([]B, error) {
	in := rill.FromSlice(entities, nil)

	out := rill.OrderedMap(in, max(n, 1), func(a A) (B, error) {
		if err := ctx.Err(); err != nil {
			var zero B

			return zero, err
		}

		return f(a), nil
	})

	return rill.ToSlice(out)
}

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

// Package atlas slices raw map data along country borders and sections
// routable lines into a directed graph.
//
// Both transforms read an immutable *model.Atlas and build a new one; the
// input is never modified. Failures of single features are collected in
// the returned Summary while the rest of the atlas is still produced.
package atlas

import (
	"context"
	"fmt"
	"time"

	"m4o.io/atlas/boundary"
	"m4o.io/atlas/internal/sectioning"
	"m4o.io/atlas/internal/slicing"
	"m4o.io/atlas/model"
)

const (
	TransformSlice   = "slice"
	TransformSection = "section"
)

// Slice assigns every point, line and relation of raw to the countries of
// boundaries. Lines crossing a border are cut, relations spanning several
// countries are copied once per country.
func Slice(ctx context.Context, raw *model.Atlas, boundaries *boundary.CountryBoundaryMap, opts ...SliceOption,
) (*model.Atlas, *Summary, error) {
	o := newOptions(opts)
	summary := o.start(TransformSlice, raw)

	if err := o.cfg.Validate(); err != nil {
		return nil, nil, err
	}

	if !o.cfg.CountrySlicing {
		return o.skip(summary, raw)
	}

	out, failures, stats, err := slicing.Slice(ctx, raw, boundaries, o.cfg, o.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("run %s: %w", summary.RunID, err)
	}

	summary.Counters = map[string]int{
		"split_lines":      stats.SplitLines,
		"line_pieces":      stats.LinePieces,
		"synthetic_points": stats.SyntheticPoints,
		"closing_lines":    stats.ClosingLines,
		"relation_copies":  stats.RelationCopies,
	}

	return o.finish(summary, out, failures)
}

// Section replaces the routable lines of a by nodes and directed edges.
func Section(ctx context.Context, a *model.Atlas, opts ...SectionOption) (*model.Atlas, *Summary, error) {
	o := newOptions(opts)
	summary := o.start(TransformSection, a)

	if err := o.cfg.Validate(); err != nil {
		return nil, nil, err
	}

	if !o.cfg.WaySectioning {
		return o.skip(summary, a)
	}

	out, failures, stats, err := sectioning.Section(ctx, a, o.cfg, o.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("run %s: %w", summary.RunID, err)
	}

	summary.Counters = map[string]int{
		"sectioned_lines": stats.SectionedLines,
		"nodes":           stats.Nodes,
		"edges":           stats.Edges,
		"consumed_points": stats.ConsumedPoints,
	}

	return o.finish(summary, out, failures)
}

func (o options) start(transform string, in *model.Atlas) *Summary {
	return &Summary{
		RunID:     o.runID,
		Transform: transform,
		Started:   time.Now(),
		Input:     CountsOf(in),
	}
}

// skip hands back the input, which is immutable and needs no copy.
func (o options) skip(s *Summary, in *model.Atlas) (*model.Atlas, *Summary, error) {
	s.Skipped = true
	s.Output = s.Input
	s.Duration = time.Since(s.Started)

	o.logger.Info("transform disabled", "summary", s)

	return in, s, nil
}

func (o options) finish(s *Summary, out *model.Atlas, failures []*model.FeatureError) (*model.Atlas, *Summary, error) {
	s.Output = CountsOf(out)
	s.Failures = failures
	s.Duration = time.Since(s.Started)

	o.logger.Info("transform done", "summary", s)

	return out, s, nil
}

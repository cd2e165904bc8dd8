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

package atlas

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"m4o.io/atlas/model"
)

// Counts is the number of entities of each type in an atlas.
type Counts struct {
	Points    int `json:"points"`
	Lines     int `json:"lines"`
	Relations int `json:"relations"`
	Nodes     int `json:"nodes"`
	Edges     int `json:"edges"`
}

// CountsOf counts the entities of a.
func CountsOf(a *model.Atlas) Counts {
	return Counts{
		Points:    a.NumberOfPoints(),
		Lines:     a.NumberOfLines(),
		Relations: a.NumberOfRelations(),
		Nodes:     a.NumberOfNodes(),
		Edges:     a.NumberOfEdges(),
	}
}

// Summary describes a transform run.
type Summary struct {
	RunID     uuid.UUID      `json:"run_id"`
	Transform string         `json:"transform"`
	Started   time.Time      `json:"started"`
	Duration  time.Duration  `json:"duration"`
	Skipped   bool           `json:"skipped"` // the transform is disabled in the configuration
	Input     Counts         `json:"input"`
	Output    Counts         `json:"output"`
	Counters  map[string]int `json:"counters,omitempty"`

	Failures []*model.FeatureError `json:"-"`
}

// FailuresOf returns the failures of the given kind.
func (s *Summary) FailuresOf(kind error) []*model.FeatureError {
	var out []*model.FeatureError

	for _, f := range s.Failures {
		if errors.Is(f, kind) {
			out = append(out, f)
		}
	}

	return out
}

// FailuresByKind counts the failures per kind.
func (s *Summary) FailuresByKind() map[string]int {
	counts := make(map[string]int)

	for _, f := range s.Failures {
		counts[f.Kind.Error()]++
	}

	return counts
}

func (s *Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run", s.RunID.String()),
		slog.String("transform", s.Transform),
		slog.Duration("duration", s.Duration),
		slog.Bool("skipped", s.Skipped),
		slog.Any("input", s.Input),
		slog.Any("output", s.Output),
		slog.Int("failures", len(s.Failures)),
	)
}

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
	"log/slog"

	"github.com/google/uuid"

	"m4o.io/atlas/config"
)

// options provides optional configuration parameters for the transforms.
type options struct {
	cfg     config.LoadingOption
	logger  *slog.Logger
	workers int       // overrides the configured number of workers when positive
	runID   uuid.UUID // generated when nil
}

// Option configures a transform.
type Option func(*options)

// SliceOption configures Slice.
type SliceOption = Option

// SectionOption configures Section.
type SectionOption = Option

// WithConfig lets you set the loading options. Missing, config.Default is
// used.
func WithConfig(cfg config.LoadingOption) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithLogger lets you set the logger receiving the run summary and the
// feature failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithWorkers lets you set the number of goroutines used for background
// processing.
func WithWorkers(n uint16) Option {
	return func(o *options) {
		o.workers = int(n)
	}
}

// WithRunID lets you name the run instead of generating a random ID.
func WithRunID(id uuid.UUID) Option {
	return func(o *options) {
		o.runID = id
	}
}

func newOptions(opts []Option) options {
	o := options{
		cfg:    config.Default(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.workers > 0 {
		o.cfg.Workers = o.workers
	}

	if o.runID == uuid.Nil {
		o.runID = uuid.New()
	}

	return o
}

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

// Package config holds the options shared by the slicing and sectioning
// transforms.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"

	"github.com/pelletier/go-toml/v2"

	"m4o.io/atlas/model"
)

// LoadingOption controls which countries are recognized and which
// behaviours the transforms apply.
type LoadingOption struct {
	// CountryCodes restricts slicing to these ISO codes. Empty means every
	// country of the boundary map.
	CountryCodes []string `toml:"country_codes"`

	// AdditionalCountryCodes are recognized on top of CountryCodes.
	AdditionalCountryCodes []string `toml:"additional_country_codes"`

	CountrySlicing     bool `toml:"country_slicing"`
	MultiPolygonRepair bool `toml:"multipolygon_repair"`
	WaySectioning      bool `toml:"way_sectioning"`

	// EdgeKeys are the tag keys that make a line routable.
	EdgeKeys []string `toml:"edge_keys"`

	// BarrierKeys are the tag keys that make a point split a way.
	BarrierKeys []string `toml:"barrier_keys"`

	// Tolerance is the distance, in degrees, under which two locations are
	// the same place. Sectioned nodes merge on this grid.
	Tolerance model.Epsilon `toml:"tolerance"`

	Workers int `toml:"workers"`
}

var ErrInvalid = errors.New("invalid loading option")

// Default returns the options with every behaviour enabled.
func Default() LoadingOption {
	return LoadingOption{
		CountrySlicing:     true,
		MultiPolygonRepair: true,
		WaySectioning:      true,
		EdgeKeys:           []string{"highway"},
		BarrierKeys:        []string{"barrier"},
		Tolerance:          model.DefaultTolerance,
		Workers:            DefaultWorkers(),
	}
}

// DefaultWorkers provides the default number of goroutines used by the
// transforms.
func DefaultWorkers() int {
	return max(runtime.GOMAXPROCS(-1)-1, 1)
}

// Load reads options from a TOML file. Keys missing from the file keep
// their Default value.
func Load(path string) (LoadingOption, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LoadingOption{}, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	return Parse(data)
}

// Parse decodes TOML options on top of Default.
func Parse(data []byte) (LoadingOption, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return LoadingOption{}, fmt.Errorf("failed to parse TOML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return LoadingOption{}, err
	}

	return cfg, nil
}

// Validate checks the option values are usable.
func (o LoadingOption) Validate() error {
	if o.Tolerance <= 0 || o.Tolerance > model.E5 {
		return fmt.Errorf("%w: tolerance %g outside (0, %g]", ErrInvalid, float64(o.Tolerance), float64(model.E5))
	}

	if o.Workers < 1 {
		return fmt.Errorf("%w: workers %d", ErrInvalid, o.Workers)
	}

	if o.WaySectioning && len(o.EdgeKeys) == 0 {
		return fmt.Errorf("%w: way sectioning needs at least one edge key", ErrInvalid)
	}

	return nil
}

// Recognizes reports whether code is one of the countries to slice against.
func (o LoadingOption) Recognizes(code string) bool {
	if len(o.CountryCodes) == 0 {
		return true
	}

	return slices.Contains(o.CountryCodes, code) || slices.Contains(o.AdditionalCountryCodes, code)
}

// Marshal encodes the options as TOML.
func (o LoadingOption) Marshal() ([]byte, error) {
	b, err := toml.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("failed to encode TOML: %w", err)
	}

	return b, nil
}

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
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"m4o.io/atlas/atlastext"
	"m4o.io/atlas/ingest"
	"m4o.io/atlas/internal/compress"
	"m4o.io/atlas/model"
)

// IsOSMXML reports whether path names an OSM XML extract, compressed or not.
func IsOSMXML(path string) bool {
	base := path
	if compress.FromPath(path) != compress.RAW {
		base = strings.TrimSuffix(path, filepath.Ext(path))
	}

	return strings.EqualFold(filepath.Ext(base), ".osm")
}

// ReadAtlas reads an atlas from path, or stdin for "-" or "". OSM XML
// extracts are ingested, anything else is read as atlas text.
func ReadAtlas(ctx context.Context, path string, progress bool) (*model.Atlas, error) {
	in, err := OpenInput(path, progress)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	if IsOSMXML(path) {
		a, failures, err := ingest.ReadOSMXML(ctx, in)
		if err != nil {
			return nil, err
		}

		if len(failures) > 0 {
			slog.Warn("features not ingested", "path", path, "count", len(failures))
		}

		return a, nil
	}

	return atlastext.Read(in)
}

// WriteAtlas writes a as atlas text to path, compressed according to its
// extension, or to stdout compressed with codec for "-" or "".
func WriteAtlas(path string, codec compress.Codec, a *model.Atlas) (err error) {
	var w io.WriteCloser

	if path == "" || path == "-" {
		w, err = compress.NewWriter(os.Stdout, codec)
	} else {
		w, err = compress.Create(path)
	}

	if err != nil {
		return err
	}

	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	if err := atlastext.Write(w, a); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}

	return nil
}

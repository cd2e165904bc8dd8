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

// Package compress selects stream compressors and decompressors by file
// extension.
package compress

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Codec is an enumeration of supported stream compressions.
type Codec int

const (
	// RAW denotes uncompressed data.
	RAW Codec = iota

	// GZIP denotes gzip compressed data.
	GZIP

	// ZSTD denotes Zstandard compressed data.
	ZSTD

	// LZ4 denotes LZ4 frame compressed data.
	LZ4

	// XZ denotes xz compressed data.
	XZ
)

var ErrUnknownCodec = errors.New("unknown compression codec")

var extensions = map[string]Codec{
	".gz":   GZIP,
	".gzip": GZIP,
	".zst":  ZSTD,
	".zstd": ZSTD,
	".lz4":  LZ4,
	".xz":   XZ,
}

func (c Codec) String() string {
	switch c {
	case RAW:
		return "raw"
	case GZIP:
		return "gzip"
	case ZSTD:
		return "zstd"
	case LZ4:
		return "lz4"
	case XZ:
		return "xz"
	default:
		return fmt.Sprintf("Codec(%d)", int(c))
	}
}

// ParseCodec is the inverse of Codec.String.
func ParseCodec(s string) (Codec, error) {
	for c := RAW; c <= XZ; c++ {
		if strings.EqualFold(c.String(), s) {
			return c, nil
		}
	}

	return RAW, fmt.Errorf("%w: %q", ErrUnknownCodec, s)
}

// Extension returns the file extension of the codec, empty for RAW.
func (c Codec) Extension() string {
	switch c {
	case GZIP:
		return ".gz"
	case ZSTD:
		return ".zst"
	case LZ4:
		return ".lz4"
	case XZ:
		return ".xz"
	default:
		return ""
	}
}

// FromPath returns the codec implied by the extension of path.
func FromPath(path string) Codec {
	if c, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return c
	}

	return RAW
}

type file struct {
	io.ReadCloser
	f *os.File
}

func (f file) Close() error {
	err := f.ReadCloser.Close()
	if cerr := f.f.Close(); err == nil {
		err = cerr
	}

	return err
}

// Open opens path for reading, decompressing it according to its extension.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r, err := NewReader(f, FromPath(path))
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	return file{ReadCloser: r, f: f}, nil
}

type createdFile struct {
	io.WriteCloser
	f *os.File
}

func (f createdFile) Close() error {
	err := f.WriteCloser.Close()
	if cerr := f.f.Close(); err == nil {
		err = cerr
	}

	return err
}

// Create creates path for writing, compressing it according to its extension.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w, err := NewWriter(f, FromPath(path))
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("cannot write %s: %w", path, err)
	}

	return createdFile{WriteCloser: w, f: f}, nil
}

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

package compress

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
	"github.com/ulikunitz/xz"
)

// NewReader wraps r with the decompressor of the codec. Closing the result
// never closes r.
func NewReader(r io.Reader, c Codec) (io.ReadCloser, error) {
	var factory func(r io.Reader) (io.ReadCloser, error)

	switch c {
	case RAW:
		return io.NopCloser(r), nil
	case GZIP:
		factory = func(r io.Reader) (io.ReadCloser, error) {
			return gzip.NewReader(r)
		}
	case ZSTD:
		factory = func(r io.Reader) (io.ReadCloser, error) {
			d, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}

			return d.IOReadCloser(), nil
		}
	case LZ4:
		factory = func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(lz4.NewReader(r)), nil
		}
	case XZ:
		factory = func(r io.Reader) (io.ReadCloser, error) {
			x, err := xz.NewReader(r)
			if err != nil {
				return nil, err
			}

			return io.NopCloser(x), nil
		}
	default:
		return nil, ErrUnknownCodec
	}

	rdr, err := factory(r)
	if err != nil {
		return nil, fmt.Errorf("unpacker factory error: %w", err)
	}

	return rdr, nil
}

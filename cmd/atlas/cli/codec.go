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
	"github.com/spf13/pflag"

	"m4o.io/atlas/internal/compress"
)

// -- compress.Codec Value
type codecValue struct {
	value *compress.Codec
}

// NewCodecValue creates a cobra Value object for a compression codec.
func NewCodecValue(def compress.Codec, p *compress.Codec) pflag.Value {
	*p = def

	return &codecValue{value: p}
}

func (c *codecValue) Set(val string) error {
	codec, err := compress.ParseCodec(val)
	if err != nil {
		return err
	}

	*c.value = codec

	return nil
}

func (c *codecValue) Type() string {
	return "codec"
}

func (c *codecValue) String() string {
	return c.value.String()
}

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
	"fmt"
	"io"
	"os"

	pb "gopkg.in/cheggaaa/pb.v1"

	"m4o.io/atlas/internal/compress"
)

// progressBar is an instance of ReadCloser with an associated ProgressBar.
// Closing this instance closes the delegate as well as clearing the terminal
// line of progress output.
type progressBar struct {
	r   io.ReadCloser
	bar *pb.ProgressBar
}

// WrapInputFile creates an instance of os.File with an associated
// ProgressBar that tracks the bytes read relative to the total.
func WrapInputFile(f *os.File) (io.ReadCloser, error) {
	if f == os.Stdin {
		// don't bother wrapping stdin
		return os.Stdin, nil
	}

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	bar := pb.New(int(fi.Size())).SetUnits(pb.U_BYTES_DEC).SetWidth(79)
	bar.Output = os.Stderr
	bar.Start()

	return progressBar{
		r:   bar.NewProxyReader(f),
		bar: bar,
	}, nil
}

func (pb progressBar) Read(p []byte) (int, error) {
	return pb.r.Read(p)
}

// Close closes the delegate and clears the terminal line of progress
// output.
func (pb progressBar) Close() error {
	// make sure newline is not printed by Finish()
	pb.bar.Output = nil
	pb.bar.NotPrint = true

	pb.bar.Finish()

	fmt.Fprintf(os.Stderr, "\033[2K\r") // clear status bar

	return pb.r.Close()
}

// input chains the decompressor in front of the progress bar.
type input struct {
	io.ReadCloser
	raw io.Closer
}

func (in input) Close() error {
	err := in.ReadCloser.Close()
	if cerr := in.raw.Close(); err == nil {
		err = cerr
	}

	return err
}

// OpenInput opens path, or stdin for "-" or "", decompressing it according
// to its extension. Progress is tracked on the compressed bytes.
func OpenInput(path string, progress bool) (io.ReadCloser, error) {
	f := os.Stdin

	if path != "" && path != "-" {
		var err error
		if f, err = os.Open(path); err != nil {
			return nil, err
		}
	}

	var raw io.ReadCloser = f

	if progress {
		wrapped, err := WrapInputFile(f)
		if err != nil {
			f.Close()

			return nil, err
		}

		raw = wrapped
	}

	r, err := compress.NewReader(raw, compress.FromPath(path))
	if err != nil {
		raw.Close()

		return nil, err
	}

	return input{ReadCloser: r, raw: raw}, nil
}

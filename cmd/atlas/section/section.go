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

package section

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"m4o.io/atlas"
	"m4o.io/atlas/cmd/atlas/cli"
	"m4o.io/atlas/internal/compress"
)

var codec compress.Codec

func init() {
	cli.RootCmd.AddCommand(sectionCmd)

	flags := sectionCmd.Flags()
	flags.StringP("output", "o", "-", "output atlas file, compressed by extension")
	flags.Uint16P("workers", "w", 0, "number of goroutines, 0 keeps the configured value")
	flags.BoolP("progress", "p", false, "show a progress bar while reading")
	flags.VarP(cli.NewCodecValue(compress.RAW, &codec), "compress", "z", "compression of the output written to stdout")
}

var sectionCmd = &cobra.Command{
	Use:   "section [<atlas file>]",
	Short: "Section the routable lines of an atlas into nodes and edges",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) == 1 {
			path = args[0]
		}

		flags := cmd.Flags()

		cfg, err := cli.LoadConfig(flags)
		if err != nil {
			return err
		}

		workers, _ := flags.GetUint16("workers")
		progress, _ := flags.GetBool("progress")
		output, _ := flags.GetString("output")

		a, err := cli.ReadAtlas(cmd.Context(), path, progress)
		if err != nil {
			return err
		}

		sectioned, summary, err := atlas.Section(cmd.Context(), a,
			atlas.WithConfig(cfg), atlas.WithWorkers(workers), atlas.WithLogger(slog.Default()))
		if err != nil {
			return err
		}

		cli.ReportFailures(os.Stderr, summary)

		return cli.WriteAtlas(output, codec, sectioned)
	},
}

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

package info

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"m4o.io/atlas"
	"m4o.io/atlas/cmd/atlas/cli"
	"m4o.io/atlas/model"
)

var out io.Writer = os.Stdout

type atlasInfo struct {
	model.Metadata
	atlas.Counts

	BoundingBox *model.BoundingBox

	// Countries counts the entities per country tag.
	CountryCounts map[string]int64 `json:",omitempty"`

	// LineLength and EdgeLength are geodesic lengths in meters. Only main
	// edges count.
	LineLength float64 `json:",omitempty"`
	EdgeLength float64 `json:",omitempty"`
}

func init() {
	cli.RootCmd.AddCommand(infoCmd)

	flags := infoCmd.Flags()
	flags.BoolP("json", "j", false, "format information in JSON")
	flags.BoolP("extended", "e", false, "provide extended information (entities per country, lengths)")
	flags.BoolP("progress", "p", false, "show a progress bar while reading")
}

var infoCmd = &cobra.Command{
	Use:   "info [<atlas file>]",
	Short: "Print information about an atlas file",
	Long:  "Print information about an atlas text file or an OSM XML extract",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var path string
		if len(args) == 1 {
			path = args[0]
		}

		flags := cmd.Flags()

		progress, err := flags.GetBool("progress")
		if err != nil {
			log.Fatal(err)
		}

		a, err := cli.ReadAtlas(cmd.Context(), path, progress)
		if err != nil {
			log.Fatal(err)
		}

		extended, err := flags.GetBool("extended")
		if err != nil {
			log.Fatal(err)
		}

		info := runInfo(a, extended)

		jsonfmt, err := flags.GetBool("json")
		if err != nil {
			log.Fatal(err)
		}

		if jsonfmt {
			renderJSON(info)
		} else {
			renderTxt(info, extended)
		}
	},
}

func runInfo(a *model.Atlas, extended bool) *atlasInfo {
	info := &atlasInfo{
		Metadata:    a.Metadata(),
		Counts:      atlas.CountsOf(a),
		BoundingBox: a.Bounds(),
	}

	if extended {
		info.CountryCounts = make(map[string]int64)

		tally := func(t model.Tags) {
			info.CountryCounts[t.Country()]++
		}

		for p := range a.Points() {
			tally(p.Tags)
		}

		for l := range a.Lines() {
			tally(l.Tags)
			info.LineLength += model.Length(l.Locations)
		}

		for r := range a.Relations() {
			tally(r.Tags)
		}

		for n := range a.Nodes() {
			tally(n.Tags)
		}

		for e := range a.Edges() {
			tally(e.Tags)

			if e.IsMain() {
				info.EdgeLength += model.Length(e.Locations)
			}
		}
	}

	return info
}

func renderJSON(info *atlasInfo) {
	b, err := json.Marshal(info)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Fprint(out, string(b))
}

func renderTxt(info *atlasInfo, extended bool) {
	bbox := "none"
	if info.BoundingBox != nil {
		bbox = info.BoundingBox.String()
	}

	timestamp := ""
	if !info.Timestamp.IsZero() {
		timestamp = info.Timestamp.UTC().Format(time.RFC3339)
	}

	fmt.Fprintf(out, "BoundingBox: %s\n", bbox)
	fmt.Fprintf(out, "Source: %s\n", info.Source)
	fmt.Fprintf(out, "WritingProgram: %s\n", info.WritingProgram)
	fmt.Fprintf(out, "Timestamp: %s\n", timestamp)
	fmt.Fprintf(out, "Countries: %s\n", strings.Join(info.Metadata.Countries, ", "))
	fmt.Fprintf(out, "Sliced: %t\n", info.Sliced)
	fmt.Fprintf(out, "Sectioned: %t\n", info.Sectioned)
	fmt.Fprintf(out, "PointCount: %s\n", humanize.Comma(int64(info.Points)))
	fmt.Fprintf(out, "LineCount: %s\n", humanize.Comma(int64(info.Lines)))
	fmt.Fprintf(out, "RelationCount: %s\n", humanize.Comma(int64(info.Relations)))
	fmt.Fprintf(out, "NodeCount: %s\n", humanize.Comma(int64(info.Nodes)))
	fmt.Fprintf(out, "EdgeCount: %s\n", humanize.Comma(int64(info.Edges)))

	if extended {
		for _, code := range model.SortedKeys(info.CountryCounts) {
			fmt.Fprintf(out, "Country %s: %s\n", code, humanize.Comma(info.CountryCounts[code]))
		}

		fmt.Fprintf(out, "LineLength: %s km\n", humanize.CommafWithDigits(info.LineLength/1000, 1))
		fmt.Fprintf(out, "EdgeLength: %s km\n", humanize.CommafWithDigits(info.EdgeLength/1000, 1))
	}
}

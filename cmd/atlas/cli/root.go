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

// Package cli holds the root command and the plumbing shared by the atlas
// subcommands.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"m4o.io/atlas/config"
)

// EnvPrefix prefixes the environment variables providing flag defaults,
// e.g. ATLAS_BOUNDARIES for --boundaries.
const EnvPrefix = "ATLAS_"

// RootCmd is the base command of the atlas CLI.
var RootCmd = &cobra.Command{
	Use:           "atlas",
	Short:         "Slice map data along country borders and section it into a routing graph",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// a missing .env is fine
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return err
		}

		if err := ApplyEnv(cmd.Flags()); err != nil {
			return err
		}

		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return err
		}

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		return nil
	},
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringP("config", "f", "", "TOML file with the loading options")
	flags.BoolP("verbose", "v", false, "log every feature failure")
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}

// EnvName returns the environment variable backing a flag.
func EnvName(flag string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// ApplyEnv sets every flag left unset on the command line from its
// environment variable, if any.
func ApplyEnv(flags *pflag.FlagSet) error {
	var err error

	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed {
			return
		}

		if v, ok := os.LookupEnv(EnvName(f.Name)); ok {
			if serr := flags.Set(f.Name, v); serr != nil {
				err = fmt.Errorf("%s: %w", EnvName(f.Name), serr)
			}
		}
	})

	return err
}

// LoadConfig returns the options of the --config file, or the defaults.
func LoadConfig(flags *pflag.FlagSet) (config.LoadingOption, error) {
	path, err := flags.GetString("config")
	if err != nil {
		return config.LoadingOption{}, err
	}

	if path == "" {
		return config.Default(), nil
	}

	return config.Load(path)
}

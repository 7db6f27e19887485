// Copyright 2025 Magnus Pierre
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

// Command jasondata filters, searches, sorts and groups CSV, JSON and
// Parquet files.
//
//	jasondata people.csv --where "age >= 18 and age < 65" --sort -age --limit 10
//	jasondata people.json --query query.yaml --out adults.parquet
//	jasondata people.csv --group-by dept --count
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o runOptions

	cmd := &cobra.Command{
		Use:           "jasondata <file>",
		Short:         "Query CSV, JSON and Parquet files",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.input = args[0]
			return run(cmd.Context(), cmd.OutOrStdout(), o)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.configFile, "config", "", "config file (YAML, JSON or TOML)")
	f.StringVar(&o.queryFile, "query", "", "query document (YAML or JSON)")
	f.StringVarP(&o.where, "where", "w", "", `predicate such as "age >= 18 and age < 65", or a search term`)
	f.StringSliceVarP(&o.sort, "sort", "s", nil, "sort fields, prefix with - for descending")
	f.IntVarP(&o.limit, "limit", "n", 0, "maximum number of rows, 0 for all")
	f.StringSliceVarP(&o.groupBy, "group-by", "g", nil, "fields to group by")
	f.BoolVar(&o.count, "count", false, "print group sizes instead of rows (with --group-by)")
	f.StringVarP(&o.out, "out", "o", "", "write rows to a CSV, JSON or Parquet file instead of stdout (not with --group-by)")

	return cmd
}

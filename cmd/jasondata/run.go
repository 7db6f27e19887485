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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/magpierre/jasondata/adapters/file"
	"github.com/magpierre/jasondata/config"
	"github.com/magpierre/jasondata/datasource"
	"github.com/magpierre/jasondata/internal/logger"
	"github.com/magpierre/jasondata/nest"
	"github.com/magpierre/jasondata/query"
)

type runOptions struct {
	input      string
	configFile string
	queryFile  string
	where      string
	sort       []string
	limit      int
	groupBy    []string
	count      bool
	out        string
}

func run(ctx context.Context, w io.Writer, o runOptions) error {
	if o.count && len(o.groupBy) == 0 {
		return fmt.Errorf("--count requires --group-by")
	}
	if o.out != "" && len(o.groupBy) > 0 {
		return fmt.Errorf("--out cannot be combined with --group-by")
	}

	cfg, err := config.Load(config.DefaultPrefix, o.configFile)
	if err != nil {
		return err
	}
	cfg.InitLogger()
	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	q, err := buildQuery(o)
	if err != nil {
		return err
	}

	rows, err := file.Load(ctx, o.input)
	if err != nil {
		return err
	}
	ds := datasource.New(rows, datasource.WithOptions(opts))

	result, err := q.Apply(ds, nil)
	if err != nil {
		return err
	}
	logger.Get().Info("query done", "file", filepath.Base(o.input), "rows", ds.Len(), "matched", len(result))

	if len(o.groupBy) > 0 {
		return writeGroups(w, result, o)
	}
	if o.out != "" {
		return file.Save(o.out, result)
	}
	return file.WriteJSON(w, result)
}

// buildQuery combines the query document with the command line flags.
// Flags override the document.
func buildQuery(o runOptions) (*query.Query, error) {
	q := &query.Query{}
	if o.queryFile != "" {
		data, err := os.ReadFile(o.queryFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read query: %w", err)
		}
		if strings.EqualFold(filepath.Ext(o.queryFile), ".json") {
			q, err = query.ParseJSON(data)
		} else {
			q, err = query.ParseYAML(data)
		}
		if err != nil {
			return nil, err
		}
	}

	if o.where != "" {
		p, err := query.ParsePredicate(o.where)
		if err != nil {
			return nil, err
		}
		if p.Filter != nil {
			q.Filter = p.Filter
		}
		if p.Search != nil {
			q.Search = p.Search
		}
	}

	if len(o.sort) > 0 {
		q.Sort = q.Sort[:0]
		for _, s := range o.sort {
			d := datasource.ParseSortDirective(s)
			q.Sort = append(q.Sort, query.Sort{Name: d.Name, Reverse: d.Reverse})
		}
	}
	if o.limit != 0 {
		q.Limit = o.limit
	}
	return q, nil
}

func writeGroups(w io.Writer, rows []datasource.Row, o runOptions) error {
	n := nest.New()
	for _, field := range o.groupBy {
		n.KeyField(field).SortKeys(strings.Compare)
	}
	if o.count {
		n.Rollup(func(leaf []datasource.Row) any { return len(leaf) })
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(n.Map(rows)); err != nil {
		return fmt.Errorf("failed to encode groups: %w", err)
	}
	return nil
}

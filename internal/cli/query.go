package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"artdesk/internal/catalog"
	"artdesk/internal/query"
	"artdesk/internal/report"
)

const (
	reportNewlyAdded  = "newly-added"
	reportMissingData = "missing-data"
)

func RunQuery(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	q, err := queryFromFlags(cmd, e.cfg.Catalog.EnumeratedColumns)
	if err != nil {
		return err
	}
	all, _ := cmd.Flags().GetBool("all")

	table, err := loadTable(contextOf(cmd), cmd, e)
	if err != nil {
		return err
	}
	if all {
		q = query.Query{Sort: q.Sort}
	}
	rows := table.Rows
	if !q.IsZero() {
		rows = query.Apply(rows, q)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d rows\n", len(rows), table.Len())
	return writeOutput(cmd, catalog.Serialize(rows, table.Columns))
}

func queryFromFlags(cmd *cobra.Command, enumerated []string) (query.Query, error) {
	q := query.Query{Enumerated: query.NewEnumerated(enumerated...)}
	q.Search, _ = cmd.Flags().GetString("search")
	if ask, _ := cmd.Flags().GetString("ask"); ask != "" {
		if q.Search != "" {
			return q, fmt.Errorf("--search and --ask are mutually exclusive")
		}
		q.Search = query.InterpretNaturalQuery(ask)
	}

	filters, _ := cmd.Flags().GetStringArray("filter")
	for _, f := range filters {
		col, val, err := parseFilter(f)
		if err != nil {
			return q, err
		}
		if q.Filters == nil {
			q.Filters = map[string]string{}
		}
		q.Filters[col] = val
	}

	if s, _ := cmd.Flags().GetString("sort"); s != "" {
		q.Sort = parseSort(s)
	}
	return q, nil
}

func parseFilter(v string) (column, value string, err error) {
	column, value, ok := strings.Cut(v, "=")
	column = strings.TrimSpace(column)
	if !ok || column == "" {
		return "", "", fmt.Errorf("invalid --filter %q: want column=value", v)
	}
	return column, strings.TrimSpace(value), nil
}

// parseSort reads "column", "column:asc" or "column:desc". A colon followed
// by anything else is part of the column name.
func parseSort(v string) *query.Sort {
	s := &query.Sort{Column: v, Direction: query.Ascending}
	i := strings.LastIndex(v, ":")
	if i < 0 {
		return s
	}
	switch strings.ToLower(v[i+1:]) {
	case "asc":
		s.Column = v[:i]
	case "desc":
		s.Column = v[:i]
		s.Direction = query.Descending
	}
	return s
}

func RunReport(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	kind, _ := cmd.Flags().GetString("kind")
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}
	if kind != reportNewlyAdded && kind != reportMissingData {
		return fmt.Errorf("unknown report kind %q: want %s or %s", kind, reportNewlyAdded, reportMissingData)
	}

	table, err := loadTable(contextOf(cmd), cmd, e)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var v any
	if kind == reportNewlyAdded {
		n := report.BuildNewlyAdded(table.Rows, time.Now())
		if !asJSON {
			return report.WriteNewlyAdded(out, n)
		}
		v = n
	} else {
		c := report.BuildCompletion(table.Rows)
		if !asJSON {
			return report.WriteCompletion(out, c)
		}
		v = c
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

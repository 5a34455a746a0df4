package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"artdesk/internal/catalog"
)

func dash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

func WriteNewlyAdded(w io.Writer, n NewlyAdded) error {
	fmt.Fprintf(w, "Newly Added Items (last 10 days): %d\n", len(n.Items))
	fmt.Fprintf(w, "  Ready:        %d (%.1f%%)\n", n.Ready, n.ReadyPercent())
	fmt.Fprintf(w, "  Not Ready:    %d (%.1f%%)\n", n.NotReady, n.NotReadyPercent())
	fmt.Fprintf(w, "  Last 30 Days: %d\n\n", n.Last30Days)
	if len(n.Items) == 0 {
		_, err := fmt.Fprintln(w, "No items added in the last 10 days")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Internal ID\tDisplay Name\tBlank Color\tShopify Display Color\tCritical Data\tAdded Date")
	for _, r := range n.Items {
		status := "Not Ready"
		if Ready(r) {
			status = "Ready"
		}
		added := "Recent"
		if !r.AddedDate.IsZero() {
			added = r.AddedDate.Local().Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			dash(r.Get("Internal ID")), dash(r.Get("Display Name")), dash(r.Get("Blank Color")),
			dash(r.Get("Shopify Display Color")), status, added)
	}
	return tw.Flush()
}

func WriteCompletion(w io.Writer, c Completion) error {
	fmt.Fprintln(w, "Overall Data Completion")
	fmt.Fprintf(w, "  Total Rows:   %d\n", c.TotalRows)
	fmt.Fprintf(w, "  With Data:    %.1f%% (%d of %d fields)\n", c.PercentWith, c.CellsWith, c.TotalCells)
	fmt.Fprintf(w, "  Missing Data: %.1f%% (%d of %d fields)\n", c.PercentWithout, c.CellsWithout, c.TotalCells)

	for _, st := range c.Fields {
		fmt.Fprintf(w, "\n%s (%s field): %d / %d rows, %.1f%% complete, %.1f%% missing\n",
			st.Field.Name, st.Field.Kind, st.WithValue, st.TotalRows, st.PercentWith, st.PercentWithout)
		if st.WithoutValue == 0 {
			continue
		}
		if err := writeMissing(w, st); err != nil {
			return err
		}
	}
	return nil
}

func writeMissing(w io.Writer, st FieldStat) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  Internal ID\tDisplay Name\tBlank Color\t%s\n", st.Field.Name)
	for _, r := range st.Missing {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", dash(r.Get("Internal ID")), dash(r.Get("Display Name")),
			dash(r.Get("Blank Color")), emptyMarker(r, st.Field.Name))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if st.WithoutValue > len(st.Missing) {
		_, err := fmt.Fprintf(w, "  Showing first %d of %d rows\n", len(st.Missing), st.WithoutValue)
		return err
	}
	return nil
}

func emptyMarker(r catalog.Row, col string) string {
	if !r.Has(col) {
		return "(no column)"
	}
	if v := r.Get(col); v != "" {
		return v
	}
	return "(empty)"
}

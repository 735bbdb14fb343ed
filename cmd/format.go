package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/pipeline"
)

// formatIngestResult writes the kept people, the rejections and the write
// counts of one ingest run to out.
func formatIngestResult(out io.Writer, res *pipeline.IngestResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Source:\t%s\n", res.Source)
	_, _ = fmt.Fprintf(w, "Query:\t%s\n", res.Query)
	_, _ = fmt.Fprintf(w, "Found:\t%d\n", res.Found)
	_, _ = fmt.Fprintf(w, "Kept:\t%d\n", len(res.Kept))
	_, _ = fmt.Fprintf(w, "Rejected:\t%d\n", len(res.Rejected))
	_, _ = fmt.Fprintf(w, "Companies:\t%d\n", len(res.Companies))
	if res.Report != nil {
		_, _ = fmt.Fprintf(w, "People written:\t%s\n", formatCounts(res.Report.People))
		_, _ = fmt.Fprintf(w, "Companies written:\t%s\n", formatCounts(res.Report.Companies))
	} else {
		_, _ = fmt.Fprintln(w, "Database:\tnot written")
	}
	_ = w.Flush()

	if len(res.Kept) > 0 {
		_, _ = fmt.Fprintln(out)
		formatPeople(out, res.Kept)
	}

	if len(res.Rejected) > 0 {
		_, _ = fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "REJECTED\tREASON")
		_, _ = fmt.Fprintln(w, "--------\t------")
		for _, r := range res.Rejected {
			label := r.Raw.ProfileURL
			if label == "" {
				label = r.Raw.Name
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\n", truncate(label, 50), r.Reason.String())
		}
		_ = w.Flush()
	}
}

func formatCounts(c model.Counts) string {
	return fmt.Sprintf("%d inserted, %d updated, %d skipped", c.Inserted, c.Updated, c.Skipped)
}

// formatPeople writes a table of people to out.
func formatPeople(out io.Writer, people []model.Person) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tTITLE\tCOMPANY\tLOCATION\tPROFILE")
	_, _ = fmt.Fprintln(w, "----\t-----\t-------\t--------\t-------")
	for _, p := range people {
		company := ""
		if p.Company != nil {
			company = p.Company.Name
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			truncate(p.FullName(), 30),
			truncate(p.Title, 30),
			truncate(company, 30),
			truncate(p.Location, 25),
			p.ProfileURL,
		)
	}
	_ = w.Flush()
}

// formatPersonViews writes rows of the people-with-company view to out.
func formatPersonViews(out io.Writer, rows []model.PersonView) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tTITLE\tCOMPANY\tDOMAIN\tCONNECTIONS\tCREATED")
	_, _ = fmt.Fprintln(w, "----\t-----\t-------\t------\t-----------\t-------")
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncate(r.FullName(), 30),
			truncate(r.Title, 30),
			truncate(r.CompanyName, 30),
			r.CompanyDomain,
			formatCount(r.Connections, r.ConnectionsFloor),
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// formatEnrichReport writes the outcome of an enrichment batch to out.
func formatEnrichReport(out io.Writer, r *model.EnrichReport) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Selected:\t%d\n", r.Selected)
	_, _ = fmt.Fprintf(w, "Enriched:\t%d\n", r.Enriched)
	_, _ = fmt.Fprintf(w, "Skipped:\t%d\n", r.Skipped)
	_, _ = fmt.Fprintf(w, "Failed:\t%d\n", r.Failed)
	_ = w.Flush()
}

// formatMergeReport writes the outcome of a merge pass to out.
func formatMergeReport(out io.Writer, r *model.MergeReport) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "People merged:\t%d\n", r.PeopleMerged)
	_, _ = fmt.Fprintf(w, "Companies merged:\t%d\n", r.CompaniesMerged)
	_ = w.Flush()
}

// formatCount renders a parsed connection or follower count. Floors such as
// "500+" keep their plus sign.
func formatCount(n *int, floor bool) string {
	if n == nil {
		return ""
	}
	s := strconv.Itoa(*n)
	if floor {
		s += "+"
	}
	return s
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

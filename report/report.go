// Package report renders diff results for the operator console. This view
// groups by source category, unlike the email digest which groups by status.
package report

import (
	"fmt"
	"strings"

	"github.com/TheusHen/HCNoticer/pkg/catalog"
	"github.com/TheusHen/HCNoticer/sanitize"
)

// Render produces the text summary of a run. totalTracked is the event
// count of the full catalog, not just the new entries.
func Render(results []catalog.Result, totalTracked int) string {
	totalNew := catalog.TotalNew(results)

	var b strings.Builder
	if totalNew == 0 {
		fmt.Fprintf(&b, "No new events - %d events tracked\n", totalTracked)
		return b.String()
	}

	for _, r := range results {
		fmt.Fprintf(&b, "%s (%d new)\n", r.Category, len(r.NewEvents))
		for _, e := range r.NewEvents {
			status := e.Status
			if status == "" {
				status = "unknown"
			}
			fmt.Fprintf(&b, "  + %s [%s] - %s (%s)\n",
				e.Name,
				strings.ToUpper(status),
				sanitize.FormatDeadline(e.Deadline),
				r.Category)
		}
	}

	fmt.Fprintf(&b, "%d new event%s found | %d total tracked\n", totalNew, plural(totalNew), totalTracked)
	return b.String()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

func renderSummary(w io.Writer, results []Result) {
	table := tablewriter.NewWriter(w)
	defer table.Render()
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Action", "Target", "HTTP", "Result"})
	for _, r := range results {
		table.Append([]string{r.Action, r.Target, r.statusCodeText(), r.Status})
	}
}

func countResults(results []Result) (ok, failed int) {
	for _, r := range results {
		if r.OK() {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

// Package output renders motif results for the console and for
// tab-separated files.
package output

import (
	"fmt"
	"io"
	"sort"

	"motifscan/internal/motif"
)

// TSVHeader is the canonical header row for TSV output. Keep this as
// the single source of truth; Match_Count is the legacy column name for
// sequences-matched.
const TSVHeader = "Motif_Pattern\tMatch_Count\tFrequency"

// WriteTSV writes the header and one row per result.
func WriteTSV(w io.Writer, list []motif.Result) error {
	if _, err := fmt.Fprintln(w, TSVHeader); err != nil {
		return err
	}
	for _, r := range list {
		_, err := fmt.Fprintf(w, "%s\t%d\t%.6f\n", r.Pattern, r.SequencesMatched, r.Frequency)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteTable renders the console result table.
func WriteTable(w io.Writer, list []motif.Result) error {
	if _, err := fmt.Fprintf(w, "\n=== MOTIF FINDING RESULTS ===\n%20s%15s%15s\n%s\n",
		"Motif Pattern", "Match Count", "Frequency", dashes(50)); err != nil {
		return err
	}
	for _, r := range list {
		_, err := fmt.Fprintf(w, "%20s%15d%15.4f\n", r.Pattern, r.SequencesMatched, r.Frequency)
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// SortResults orders results by pattern, keeping the arrival order of
// equal patterns (different ranks may report the same motif).
func SortResults(list []motif.Result) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Pattern < list[j].Pattern })
}

func dashes(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '-'
	}
	return string(b)
}

// Package report renders review results as a console table, JSON or SARIF.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/systmms/enrev/internal/defect"
)

// Format selects the report output.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatSARIF Format = "sarif"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatSARIF:
		return FormatSARIF, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Summary aggregates a batch of results for machine-readable output.
type Summary struct {
	Units   int              `json:"units"`
	Passed  int              `json:"passed"`
	Failed  int              `json:"failed"`
	Defects int              `json:"defects"`
	Results []*defect.Result `json:"results"`
}

// Summarize computes batch counts over the results.
func Summarize(results []*defect.Result) Summary {
	s := Summary{Units: len(results), Results: results}
	for _, r := range results {
		if r.HasDefects() {
			s.Failed++
			s.Defects += r.TotalDefects()
		} else {
			s.Passed++
		}
	}
	return s
}

// Write renders the results in the requested format.
func Write(w io.Writer, results []*defect.Result, format Format) error {
	switch format {
	case "", FormatTable:
		return writeTable(w, results)
	case FormatJSON:
		return writeJSON(w, results)
	case FormatSARIF:
		return writeSARIF(w, results)
	}
	return fmt.Errorf("unknown report format %q", format)
}

func writeTable(w io.Writer, results []*defect.Result) error {
	summary := Summarize(results)

	for _, r := range results {
		if r.Location != "" {
			fmt.Fprintf(w, "Location: %s\n", r.Location)
		}
		fmt.Fprintf(w, "Placeholders checked: %d\n", r.PlaceholderCount)
		if r.SecretName != "" && r.ReferenceNames != "" {
			state := "mismatch"
			if r.ReferenceMatch {
				state = "match"
			}
			fmt.Fprintf(w, "Secret references: %s (%s vs %s)\n", state, r.SecretName, r.ReferenceNames)
		}

		if !r.HasDefects() {
			fmt.Fprintln(w, "Result: PASS")
			fmt.Fprintln(w)
			continue
		}

		fmt.Fprintf(w, "Result: FAIL (%d defect(s))\n", r.TotalDefects())
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CATEGORY\tDEFECT")
		for _, d := range r.FileDefects {
			fmt.Fprintf(tw, "%s\t%s\n", d.Category, d.String())
		}
		for _, d := range r.KeyDefects {
			fmt.Fprintf(tw, "%s\t%s\n", d.Category, d.String())
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d/%d unit(s) passed, %d defect(s)\n", summary.Passed, summary.Units, summary.Defects)
	return nil
}

func writeJSON(w io.Writer, results []*defect.Result) error {
	raw, err := json.MarshalIndent(Summarize(results), "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(raw, '\n'))
	return err
}

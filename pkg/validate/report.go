package validate

import (
	"encoding/json"
	"fmt"
	"io"
)

// Report is the JSON-serializable lint report printed by soullint.
type Report struct {
	Source        string                 `json:"source"`
	Verbs         int                    `json:"verbs"`
	Words         int                    `json:"words"`
	TotalFindings int                    `json:"total_findings"`
	Errors        int                    `json:"errors"`
	Categories    map[string]CategorySum `json:"categories"`
	Findings      []Finding              `json:"findings"`
}

// CategorySum summarizes findings for a single category.
type CategorySum struct {
	Total   int    `json:"total"`
	Fixable int    `json:"fixable"`
	Fixed   int    `json:"fixed"`
	Label   string `json:"label"`
}

var categoryLabels = map[Category]string{
	CatInvalid:    "Definition Errors",
	CatDuplicate:  "Duplicate Declarations",
	CatUnrendered: "Arguments Missing From Messages",
	CatReach:      "Verbs Without Abbreviations",
	CatOverlap:    "Words In Several Categories",
	CatUnused:     "Unused Words",
}

// GenerateReport builds a Report from the validator's current findings.
func GenerateReport(v *Validator, source string) *Report {
	r := &Report{
		Source:        source,
		TotalFindings: len(v.findings),
		Errors:        v.Errors(),
		Categories:    make(map[string]CategorySum),
		Findings:      v.findings,
	}
	if v.table != nil {
		r.Verbs = len(v.table.Verbs())
		r.Words = v.table.Lexicon().Len()
	}

	catCounts := make(map[Category]*CategorySum)
	for _, f := range v.findings {
		cs, ok := catCounts[f.Category]
		if !ok {
			cs = &CategorySum{Label: categoryLabels[f.Category]}
			catCounts[f.Category] = cs
		}
		cs.Total++
		if f.Fixable {
			cs.Fixable++
		}
		if f.Fixed {
			cs.Fixed++
		}
	}
	for cat, cs := range catCounts {
		r.Categories[cat.String()] = *cs
	}

	return r
}

// WriteJSON writes the report as JSON to the given writer.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText writes one line per finding, compiler style.
func (r *Report) WriteText(w io.Writer) error {
	for _, f := range r.Findings {
		loc := r.Source
		if f.Line > 0 {
			loc = fmt.Sprintf("%s:%d", r.Source, f.Line)
		}
		if _, err := fmt.Fprintf(w, "%s: %s: %s\n", loc, f.Severity, f.Description); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d verbs, %d words, %d findings, %d errors\n",
		r.Verbs, r.Words, r.TotalFindings, r.Errors)
	return err
}

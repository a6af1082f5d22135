package dataset

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// foldCaser implements case-insensitive participants-column matching
// (BIDS TSV headers vary in case across datasets). golang.org/x/text/cases
// gives a Unicode-aware fold rather than strings.ToLower, keeping column
// matching consistent for the non-ASCII participant column names some
// BIDS datasets carry (e.g. accented site names).
var foldCaser = cases.Fold()

func foldKey(s string) string { return foldCaser.String(s) }

// LoadParticipants parses a participants.tsv file into a map keyed by bare
// subject id (the "participant_id" column with its "sub-" prefix
// stripped, so it joins directly against FileRecord.Entities["sub"]).
// Columns are typed permissively: values that parse as a float64 are
// stored numerically, everything else as a string; "n/a" (BIDS's
// conventional missing-value marker) becomes nil.
func LoadParticipants(r io.Reader) (map[string]map[string]any, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return map[string]map[string]any{}, nil
	}

	header := rows[0]
	idCol := 0
	for i, h := range header {
		if foldKey(h) == foldKey("participant_id") {
			idCol = i
			break
		}
	}

	out := make(map[string]map[string]any, len(rows)-1)
	for _, rec := range rows[1:] {
		if idCol >= len(rec) {
			continue
		}
		sub := strings.TrimPrefix(rec[idCol], "sub-")
		row := make(map[string]any, len(header))
		for i, h := range header {
			if i == idCol {
				continue
			}
			if i >= len(rec) {
				continue
			}
			row[h] = parseTSVValue(rec[i])
		}
		out[sub] = row
	}
	return out, nil
}

func parseTSVValue(s string) any {
	if s == "" || s == "n/a" || s == "N/A" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

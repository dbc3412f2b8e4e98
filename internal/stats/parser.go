// Package stats parses the serialized time series that the collector
// stores on each repository. GitHub occasionally returns an object
// instead of an array for the same logical field, and an absent series
// is stored as an empty string; both degrade to an empty sequence.
// A payload that fails to parse as JSON at all is a contract violation
// and surfaces as an error.
package stats

import (
	"encoding/json"

	"github.com/mkurosawa/github-org-pulse/internal/domain"
	apperrors "github.com/mkurosawa/github-org-pulse/internal/errors"
)

// ParseCodeFrequency parses a serialized code-frequency series into
// weekly (week start, additions, deletions) tuples.
func ParseCodeFrequency(raw string) ([]domain.CodeFrequency, error) {
	rows, err := parseRows(raw, 3)
	if err != nil {
		return nil, err
	}
	series := make([]domain.CodeFrequency, 0, len(rows))
	for _, row := range rows {
		series = append(series, domain.CodeFrequency{
			WeekStart: row[0],
			Additions: int(row[1]),
			Deletions: int(row[2]),
		})
	}
	return series, nil
}

// ParsePunchCard parses a serialized punch-card series into
// (day, hour, commits) tuples.
func ParsePunchCard(raw string) ([]domain.PunchCard, error) {
	rows, err := parseRows(raw, 3)
	if err != nil {
		return nil, err
	}
	series := make([]domain.PunchCard, 0, len(rows))
	for _, row := range rows {
		series = append(series, domain.PunchCard{
			Day:     int(row[0]),
			Hour:    int(row[1]),
			Commits: int(row[2]),
		})
	}
	return series, nil
}

// parseRows decodes a serialized array of numeric tuples. An empty
// input yields an empty result, as does a payload that decodes to
// something other than an array. Rows that are not numeric arrays of
// the expected arity are dropped. A JSON syntax error is fatal.
func parseRows(raw string, arity int) ([][]int64, error) {
	if raw == "" {
		return nil, nil
	}

	var value interface{}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, apperrors.NewMalformedStatsError("stats payload is not valid JSON", err)
	}

	outer, ok := value.([]interface{})
	if !ok {
		// Wrong shape, not corrupt. The rest of the pipeline expects arrays.
		return nil, nil
	}

	rows := make([][]int64, 0, len(outer))
	for _, item := range outer {
		tuple, ok := item.([]interface{})
		if !ok || len(tuple) < arity {
			continue
		}
		row := make([]int64, arity)
		valid := true
		for i := 0; i < arity; i++ {
			num, ok := tuple[i].(float64)
			if !ok {
				valid = false
				break
			}
			row[i] = int64(num)
		}
		if valid {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

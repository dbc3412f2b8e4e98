package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkurosawa/github-org-pulse/internal/domain"
	apperrors "github.com/mkurosawa/github-org-pulse/internal/errors"
)

func TestParseCodeFrequency(t *testing.T) {
	testCases := []struct {
		name        string
		raw         string
		expected    []domain.CodeFrequency
		expectError bool
	}{
		{
			name:     "absent series yields empty sequence",
			raw:      "",
			expected: nil,
		},
		{
			name: "well-formed series round-trips",
			raw:  `[[1464321600, 120, -40], [1464926400, 10, 0]]`,
			expected: []domain.CodeFrequency{
				{WeekStart: 1464321600, Additions: 120, Deletions: -40},
				{WeekStart: 1464926400, Additions: 10, Deletions: 0},
			},
		},
		{
			name:     "empty array yields empty sequence",
			raw:      `[]`,
			expected: []domain.CodeFrequency{},
		},
		{
			name:     "object instead of array yields empty sequence",
			raw:      `{"message": "computing"}`,
			expected: nil,
		},
		{
			name:     "scalar yields empty sequence",
			raw:      `42`,
			expected: nil,
		},
		{
			name: "non-numeric rows are dropped",
			raw:  `[[1464321600, 120, -40], ["bad", "row", "here"], [1464926400]]`,
			expected: []domain.CodeFrequency{
				{WeekStart: 1464321600, Additions: 120, Deletions: -40},
			},
		},
		{
			name:        "syntax error is fatal",
			raw:         `[[1464321600, 120,`,
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			series, err := ParseCodeFrequency(tc.raw)
			if tc.expectError {
				assert.Error(t, err)
				assert.True(t, apperrors.IsMalformedStats(err))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, len(tc.expected), len(series))
			for i := range tc.expected {
				assert.Equal(t, tc.expected[i], series[i])
			}
		})
	}
}

func TestParsePunchCard(t *testing.T) {
	testCases := []struct {
		name        string
		raw         string
		expected    []domain.PunchCard
		expectError bool
	}{
		{
			name:     "absent series yields empty sequence",
			raw:      "",
			expected: nil,
		},
		{
			name: "well-formed series round-trips",
			raw:  `[[0, 0, 0], [2, 14, 25], [6, 23, 1]]`,
			expected: []domain.PunchCard{
				{Day: 0, Hour: 0, Commits: 0},
				{Day: 2, Hour: 14, Commits: 25},
				{Day: 6, Hour: 23, Commits: 1},
			},
		},
		{
			name:     "object instead of array yields empty sequence",
			raw:      `{"total": 12}`,
			expected: nil,
		},
		{
			name:        "syntax error is fatal",
			raw:         `not json`,
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			series, err := ParsePunchCard(tc.raw)
			if tc.expectError {
				assert.Error(t, err)
				assert.True(t, apperrors.IsMalformedStats(err))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, len(tc.expected), len(series))
			for i := range tc.expected {
				assert.Equal(t, tc.expected[i], series[i])
			}
		})
	}
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   int64
		wantOK bool
	}{
		{name: "utc-designator", input: "2025-08-09T07:00:00Z", want: 1754722800000, wantOK: true},
		{name: "explicit-offset", input: "2025-08-09T07:00:00+00:00", want: 1754722800000, wantOK: true},
		{name: "positive-offset", input: "2025-08-09T09:00:00+02:00", want: 1754722800000, wantOK: true},
		{name: "compact-offset", input: "2025-08-09T07:00:00+0000", want: 1754722800000, wantOK: true},
		{name: "naive-is-utc", input: "2025-08-09T07:00:00", want: 1754722800000, wantOK: true},
		{name: "space-separator", input: "2025-08-09 07:00:00Z", want: 1754722800000, wantOK: true},
		{name: "date-only", input: "2025-08-09", want: 1754697600000, wantOK: true},
		{name: "fraction-truncated", input: "2025-08-09T07:00:00.123987654Z", want: 1754722800123, wantOK: true},
		{name: "surrounding-spaces", input: "  2025-08-09T07:00:00Z ", want: 1754722800000, wantOK: true},
		{name: "epoch", input: "1970-01-01T00:00:00Z", want: 0, wantOK: true},
		{name: "not-a-date", input: "not-a-date"},
		{name: "empty", input: ""},
		{name: "month-13", input: "2025-13-09T07:00:00Z"},
		{name: "hour-25", input: "2025-08-09T25:00:00Z"},
		{name: "alertmanager-zero-time", input: "0001-01-01T00:00:00Z"},
		{name: "before-epoch", input: "1969-12-31T23:59:59Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseTimestampDesignatorEquivalence(t *testing.T) {
	z, okZ := ParseTimestamp("2025-08-09T07:00:00Z")
	offset, okOffset := ParseTimestamp("2025-08-09T07:00:00+00:00")
	assert.True(t, okZ)
	assert.True(t, okOffset)
	assert.Equal(t, offset, z)
}

package cache

import (
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/jonas-jun/inv-secretary/internal/model"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	points := []model.SummaryPoint{
		{Point: "Apple unveiled new chips", Quote: "the M5 family"},
		{Point: "Shares rose after hours", Quote: ""},
		{Point: "따옴표 \"포함\" 요점", Quote: "line1\nline2"},
	}

	encoded, err := encodePoints(points)
	assert.Equal(t, nil, err)

	decoded := decodePoints(encoded)
	assert.Equal(t, formatStructured, decoded.Format)
	assert.Equal(t, points, decoded.Points)
}

func TestDecodeLegacyRoundTrip(t *testing.T) {
	points := []model.SummaryPoint{
		{Point: "Apple unveiled new chips"},
		{Point: "Shares rose after hours"},
	}

	legacy := "• Apple unveiled new chips\n• Shares rose after hours"

	decoded := decodePoints(legacy)
	assert.Equal(t, formatLegacyLines, decoded.Format)
	assert.Equal(t, points, decoded.Points)
}

func TestDecodePoints(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format summaryFormat
		want   []model.SummaryPoint
	}{
		{
			name:   "empty",
			input:  "  ",
			format: formatEmpty,
		},
		{
			name:   "structured without quote",
			input:  `[{"point":"a"}]`,
			format: formatStructured,
			want:   []model.SummaryPoint{{Point: "a"}},
		},
		{
			name:   "array missing point falls back to lines",
			input:  `[{"quote":"q"}]`,
			format: formatLegacyLines,
			want:   []model.SummaryPoint{{Point: `[{"quote":"q"}]`}},
		},
		{
			name:   "plain lines with dashes and blanks",
			input:  "- first\n\n  second  \n",
			format: formatLegacyLines,
			want:   []model.SummaryPoint{{Point: "first"}, {Point: "second"}},
		},
		{
			name:   "negative figures keep their sign",
			input:  "• -3% drop in iPhone revenue\n-2.5% guidance cut\n- -1.2% margin",
			format: formatLegacyLines,
			want: []model.SummaryPoint{
				{Point: "-3% drop in iPhone revenue"},
				{Point: "-2.5% guidance cut"},
				{Point: "-1.2% margin"},
			},
		},
		{
			name:   "json object is not a structured summary",
			input:  `{"point":"a"}`,
			format: formatLegacyLines,
			want:   []model.SummaryPoint{{Point: `{"point":"a"}`}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodePoints(tt.input)
			assert.Equal(t, tt.format, got.Format)
			assert.Equal(t, tt.want, got.Points)
		})
	}
}

func TestEncodeNilPoints(t *testing.T) {
	encoded, err := encodePoints(nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, "[]", encoded)
}

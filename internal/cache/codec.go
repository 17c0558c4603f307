package cache

import (
	"encoding/json"
	"strings"

	"github.com/jonas-jun/inv-secretary/internal/model"
)

type summaryFormat int

const (
	formatEmpty summaryFormat = iota
	formatStructured
	formatLegacyLines
)

// decodedSummary is the result of decoding a stored summary column. Format
// tells which encoding the row was written with.
type decodedSummary struct {
	Format summaryFormat
	Points []model.SummaryPoint
}

func encodePoints(points []model.SummaryPoint) (string, error) {
	if points == nil {
		points = []model.SummaryPoint{}
	}
	b, err := json.Marshal(points)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodePoints(text string) decodedSummary {
	if strings.TrimSpace(text) == "" {
		return decodedSummary{Format: formatEmpty}
	}
	if points, ok := decodeStructured(text); ok {
		return decodedSummary{Format: formatStructured, Points: points}
	}
	return decodedSummary{Format: formatLegacyLines, Points: decodeLegacyLines(text)}
}

// decodeStructured accepts a JSON array of {point, quote} objects. Every
// element must carry a point; quote is optional.
func decodeStructured(text string) ([]model.SummaryPoint, bool) {
	var raw []struct {
		Point *string `json:"point"`
		Quote *string `json:"quote"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, false
	}

	points := make([]model.SummaryPoint, 0, len(raw))
	for _, r := range raw {
		if r.Point == nil {
			return nil, false
		}
		p := model.SummaryPoint{Point: *r.Point}
		if r.Quote != nil {
			p.Quote = *r.Quote
		}
		points = append(points, p)
	}
	return points, true
}

// decodeLegacyLines reads the bullet-per-line text written before points
// carried quotes.
func decodeLegacyLines(text string) []model.SummaryPoint {
	var points []model.SummaryPoint
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = trimBullet(line)
		if line == "" {
			continue
		}
		points = append(points, model.SummaryPoint{Point: line})
	}
	return points
}

// trimBullet drops one leading "•" or "- " marker. A bare "-" is kept so
// negative figures keep their sign.
func trimBullet(line string) string {
	switch {
	case strings.HasPrefix(line, "•"):
		return strings.TrimSpace(strings.TrimPrefix(line, "•"))
	case strings.HasPrefix(line, "- "):
		return strings.TrimSpace(strings.TrimPrefix(line, "- "))
	}
	return line
}

// Package matcher finds stops whose names approximately match a query.
//
// Matching is by Jaro similarity rather than substring containment, which
// tolerates misspellings and truncated names ("central squar").
package matcher

import (
	"net/url"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/pkordes/transit-bot/internal/domain"
)

// DefaultThreshold is the minimum similarity (0..1) for a stop to match.
const DefaultThreshold = 0.8

// Matcher scores stop names against a query with a string metric.
type Matcher struct {
	metric    strutil.StringMetric
	threshold float64
}

// New returns a Matcher using the Jaro metric and DefaultThreshold.
func New() *Matcher {
	return NewWithMetric(metrics.NewJaro(), DefaultThreshold)
}

// NewWithMetric returns a Matcher with a custom metric and threshold.
func NewWithMetric(metric strutil.StringMetric, threshold float64) *Matcher {
	return &Matcher{metric: metric, threshold: threshold}
}

// Similarity returns the score of name against query after both are
// normalized: percent-decoded where applicable and lower-cased.
func (m *Matcher) Similarity(query, name string) float64 {
	return strutil.Similarity(normalize(query), normalize(decodeName(name)), m.metric)
}

// Match returns the stops whose similarity to query meets the threshold,
// in the order they appear in stops. A blank query matches nothing.
// The result is never nil.
func (m *Matcher) Match(query string, stops []domain.Stop) []domain.Stop {
	out := []domain.Stop{}
	q := normalize(query)
	if q == "" {
		return out
	}
	for _, s := range stops {
		if strutil.Similarity(q, normalize(decodeName(s.Name)), m.metric) >= m.threshold {
			out = append(out, s)
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// decodeName undoes the percent-encoding some upstream names carry.
// Names that are not valid encodings are returned unchanged.
func decodeName(name string) string {
	if !strings.Contains(name, "%") {
		return name
	}
	decoded, err := url.PathUnescape(name)
	if err != nil {
		return name
	}
	return decoded
}

package matcher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/transit-bot/internal/domain"
	"github.com/pkordes/transit-bot/internal/matcher"
)

// fixedMetric scores every pair with the same value, isolating the threshold
// comparison from the metric itself.
type fixedMetric float64

func (m fixedMetric) Compare(_, _ string) float64 { return float64(m) }

func stops(names ...string) []domain.Stop {
	out := make([]domain.Stop, len(names))
	for i, n := range names {
		out[i] = domain.Stop{ID: i + 1, Name: n}
	}
	return out
}

func names(ss []domain.Stop) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.Name
	}
	return out
}

func TestMatch_ExactNameCaseInsensitive(t *testing.T) {
	m := matcher.New()

	got := m.Match("CENTRAL SQUARE", stops("Central Square", "Railway Station"))

	assert.Equal(t, []string{"Central Square"}, names(got))
}

func TestMatch_Misspelling(t *testing.T) {
	m := matcher.New()

	assert.Greater(t, m.Similarity("central squar", "Central Square"), matcher.DefaultThreshold)
	assert.Equal(t, []string{"Central Square"}, names(m.Match("central squar", stops("Central Square"))))
}

func TestMatch_Unrelated(t *testing.T) {
	m := matcher.New()

	assert.Empty(t, m.Match("xyz", stops("Central Square")))
}

func TestMatch_ThresholdBoundary(t *testing.T) {
	candidates := stops("Central Square")

	assert.Len(t, matcher.NewWithMetric(fixedMetric(0.8), matcher.DefaultThreshold).Match("q", candidates), 1,
		"score equal to the threshold is included")
	assert.Empty(t, matcher.NewWithMetric(fixedMetric(0.79), matcher.DefaultThreshold).Match("q", candidates),
		"score below the threshold is excluded")
}

func TestMatch_PreservesDirectoryOrder(t *testing.T) {
	m := matcher.NewWithMetric(fixedMetric(1), matcher.DefaultThreshold)

	got := m.Match("anything", stops("Zoo", "Airport", "Market"))

	assert.Equal(t, []string{"Zoo", "Airport", "Market"}, names(got))
}

func TestMatch_BlankQuery(t *testing.T) {
	m := matcher.New()

	got := m.Match("   ", stops("Central Square"))

	assert.NotNil(t, got, "should return empty slice, not nil")
	assert.Empty(t, got)
}

func TestMatch_DecodesPercentEncodedNames(t *testing.T) {
	m := matcher.New()

	got := m.Match("central square", stops("Central%20Square"))

	assert.Len(t, got, 1)
}

func TestMatch_Cyrillic(t *testing.T) {
	m := matcher.New()

	got := m.Match("площадь", stops("Площадь", "Вокзал"))

	assert.Equal(t, []string{"Площадь"}, names(got))
}

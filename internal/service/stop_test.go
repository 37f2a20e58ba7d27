package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/transit-bot/internal/domain"
	"github.com/pkordes/transit-bot/internal/matcher"
	"github.com/pkordes/transit-bot/internal/service"
)

// ---- mock directory --------------------------------------------------------

// mockDirectory is a hand-written test double for service.Directory.
// Each method is a function field; set only the ones your test needs.
type mockDirectory struct {
	routes func(ctx context.Context) ([]domain.Route, error)
	stops  func(ctx context.Context) ([]domain.Stop, error)
}

func (m *mockDirectory) Routes(ctx context.Context) ([]domain.Route, error) {
	return m.routes(ctx)
}
func (m *mockDirectory) Stops(ctx context.Context) ([]domain.Stop, error) {
	return m.stops(ctx)
}

// compile-time check: mockDirectory must satisfy service.Directory.
var _ service.Directory = (*mockDirectory)(nil)

// ---- helpers ---------------------------------------------------------------

func fixtureDirectory() *mockDirectory {
	return &mockDirectory{
		routes: func(_ context.Context) ([]domain.Route, error) {
			return []domain.Route{
				{ID: 1, Number: "12"},
				{ID: 2, Number: "4"},
				{ID: 3, Number: "7a"},
				{ID: 4, Number: "bus"},
			}, nil
		},
		stops: func(_ context.Context) ([]domain.Stop, error) {
			return []domain.Stop{
				{ID: 5, Name: "Central Square", RouteIDs: []int{1, 2, 3, 4, 99}},
				{ID: 6, Name: "Market Hall", RouteIDs: []int{2}},
				{ID: 7, Name: "Railway Station"},
			}, nil
		},
	}
}

func routeNumbers(routes []domain.Route) []string {
	out := make([]string, len(routes))
	for i, r := range routes {
		out[i] = r.Number
	}
	return out
}

// ---- Search ----------------------------------------------------------------

func TestStopService_Search(t *testing.T) {
	svc := service.NewStopService(fixtureDirectory(), matcher.New(), 0)

	got, err := svc.Search(context.Background(), "central squar")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].ID)
}

func TestStopService_Search_NoMatch(t *testing.T) {
	svc := service.NewStopService(fixtureDirectory(), matcher.New(), 0)

	got, err := svc.Search(context.Background(), "xyz")

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStopService_Search_Limit(t *testing.T) {
	all := matcher.NewWithMetric(constMetric(1), matcher.DefaultThreshold)
	svc := service.NewStopService(fixtureDirectory(), all, 2)

	got, err := svc.Search(context.Background(), "anything")

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStopService_Search_UpstreamError(t *testing.T) {
	dir := &mockDirectory{
		stops: func(_ context.Context) ([]domain.Stop, error) {
			return nil, fmt.Errorf("load: %w", domain.ErrUpstreamUnavailable)
		},
	}
	svc := service.NewStopService(dir, matcher.New(), 0)

	_, err := svc.Search(context.Background(), "central")

	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

type constMetric float64

func (m constMetric) Compare(_, _ string) float64 { return float64(m) }

// ---- RoutesAtStop ----------------------------------------------------------

func TestStopService_RoutesAtStop_OrderedByNumber(t *testing.T) {
	svc := service.NewStopService(fixtureDirectory(), matcher.New(), 0)

	got, ok, err := svc.RoutesAtStop(context.Background(), 5)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"4", "7a", "12", "bus"}, routeNumbers(got),
		"unknown route id 99 is skipped and non-numeric labels go last")
}

func TestStopService_RoutesAtStop_UnknownStop(t *testing.T) {
	svc := service.NewStopService(fixtureDirectory(), matcher.New(), 0)

	got, ok, err := svc.RoutesAtStop(context.Background(), 404)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestStopService_RoutesAtStop_NoRoutes(t *testing.T) {
	svc := service.NewStopService(fixtureDirectory(), matcher.New(), 0)

	got, ok, err := svc.RoutesAtStop(context.Background(), 7)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

// ---- route number ordering -------------------------------------------------

func TestRouteNumber(t *testing.T) {
	tests := []struct {
		label string
		want  int
		ok    bool
	}{
		{"12", 12, true},
		{"4", 4, true},
		{"7a", 7, true},
		{"7б", 7, true},
		{"10A", 10, true},
		{"bus", 0, false},
		{"a7", 0, false},
		{"7ab", 0, false},
		{"a", 0, false},
		{"", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			got, ok := service.RouteNumber(tc.label)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestOrderByNumber(t *testing.T) {
	routes := []domain.Route{{Number: "12"}, {Number: "4"}, {Number: "7a"}, {Number: "bus"}}

	numbered, unnumbered := service.OrderByNumber(routes)

	assert.Equal(t, []string{"4", "7a", "12"}, routeNumbers(numbered))
	assert.Equal(t, []string{"bus"}, routeNumbers(unnumbered))
}

func TestOrderByNumber_TiesByLabel(t *testing.T) {
	routes := []domain.Route{{Number: "7b"}, {Number: "7"}, {Number: "7a"}}

	numbered, unnumbered := service.OrderByNumber(routes)

	assert.Equal(t, []string{"7", "7a", "7b"}, routeNumbers(numbered))
	assert.Empty(t, unnumbered)
}

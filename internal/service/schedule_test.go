package service_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/transit-bot/internal/domain"
	"github.com/pkordes/transit-bot/internal/service"
)

// mockTimes is a hand-written test double for service.TimesSource.
type mockTimes struct {
	times func(ctx context.Context, routeID, stopID int) ([]string, error)
}

func (m *mockTimes) Times(ctx context.Context, routeID, stopID int) ([]string, error) {
	return m.times(ctx, routeID, stopID)
}

var _ service.TimesSource = (*mockTimes)(nil)

// newScheduleService returns a ScheduleService over raw whose clock reads hh:mm UTC.
func newScheduleService(raw []string, hh, mm int) *service.ScheduleService {
	src := &mockTimes{times: func(_ context.Context, _, _ int) ([]string, error) {
		return raw, nil
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Date(2025, 6, 2, hh, mm, 30, 0, time.UTC)
	return service.NewScheduleService(src, time.UTC, logger).WithClock(func() time.Time { return now })
}

func formatted(ts []domain.ArrivalTime) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}

func TestScheduleService_NextArrivals_DropsPast(t *testing.T) {
	svc := newScheduleService([]string{"08:00", "08:15", "09:00"}, 8, 10)

	got, err := svc.NextArrivals(context.Background(), 2, 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"08:15", "09:00"}, formatted(got))
}

func TestScheduleService_NextArrivals_CapsAtThree(t *testing.T) {
	svc := newScheduleService([]string{"08:00", "08:15", "08:30", "08:45", "09:00"}, 7, 0)

	got, err := svc.NextArrivals(context.Background(), 2, 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"08:00", "08:15", "08:30"}, formatted(got))
}

func TestScheduleService_NextArrivals_IncludesCurrentMinute(t *testing.T) {
	svc := newScheduleService([]string{"08:10", "08:11"}, 8, 10)

	got, err := svc.NextArrivals(context.Background(), 2, 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"08:10", "08:11"}, formatted(got))
}

func TestScheduleService_NextArrivals_NothingUpcoming(t *testing.T) {
	svc := newScheduleService([]string{"06:00", "07:00"}, 23, 0)

	got, err := svc.NextArrivals(context.Background(), 2, 5)

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestScheduleService_NextArrivals_NoData(t *testing.T) {
	svc := newScheduleService(nil, 8, 0)

	got, err := svc.NextArrivals(context.Background(), 2, 5)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScheduleService_NextArrivals_SkipsMalformed(t *testing.T) {
	svc := newScheduleService([]string{"soon", "08:20", "8.30"}, 8, 0)

	got, err := svc.NextArrivals(context.Background(), 2, 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"08:20"}, formatted(got))
}

func TestScheduleService_NextArrivals_UsesLocation(t *testing.T) {
	src := &mockTimes{times: func(_ context.Context, _, _ int) ([]string, error) {
		return []string{"10:00", "13:00"}, nil
	}}
	// 08:00 UTC is 13:00 at UTC+5.
	plus5 := time.FixedZone("UTC+5", 5*60*60)
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	svc := service.NewScheduleService(src, plus5, nil).WithClock(func() time.Time { return now })

	got, err := svc.NextArrivals(context.Background(), 2, 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"13:00"}, formatted(got))
}

func TestScheduleService_NextArrivals_UpstreamError(t *testing.T) {
	src := &mockTimes{times: func(_ context.Context, _, _ int) ([]string, error) {
		return nil, fmt.Errorf("times: %w", domain.ErrUpstreamUnavailable)
	}}
	svc := service.NewScheduleService(src, time.UTC, nil)

	_, err := svc.NextArrivals(context.Background(), 2, 5)

	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestScheduleService_NextArrivals_PassesIDs(t *testing.T) {
	var gotRoute, gotStop int
	src := &mockTimes{times: func(_ context.Context, routeID, stopID int) ([]string, error) {
		gotRoute, gotStop = routeID, stopID
		return nil, nil
	}}
	svc := service.NewScheduleService(src, time.UTC, nil)

	_, err := svc.NextArrivals(context.Background(), 2, 5)

	require.NoError(t, err)
	assert.Equal(t, 2, gotRoute)
	assert.Equal(t, 5, gotStop)
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkordes/transit-bot/internal/domain"
)

// DefaultArrivalLimit is how many upcoming arrivals NextArrivals returns.
const DefaultArrivalLimit = 3

// TimesSource returns the raw "HH:MM" arrival list for a route at a stop.
// Arrival times are live data and are never cached. *transit.Client satisfies it.
type TimesSource interface {
	Times(ctx context.Context, routeID, stopID int) ([]string, error)
}

// ScheduleService turns raw arrival lists into the next few arrivals from now.
type ScheduleService struct {
	times TimesSource
	now   func() time.Time
	loc   *time.Location
	limit int
	log   *slog.Logger
}

// NewScheduleService constructs a ScheduleService that evaluates "now" in loc.
// A nil loc means time.Local.
func NewScheduleService(times TimesSource, loc *time.Location, log *slog.Logger) *ScheduleService {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = slog.Default()
	}
	return &ScheduleService{
		times: times,
		now:   time.Now,
		loc:   loc,
		limit: DefaultArrivalLimit,
		log:   log,
	}
}

// WithClock returns a copy of s that reads the current time from now.
func (s *ScheduleService) WithClock(now func() time.Time) *ScheduleService {
	cp := *s
	cp.now = now
	return &cp
}

// NextArrivals returns up to three arrivals at or after the current minute,
// in upstream order. An empty result means nothing is upcoming today.
// Entries that are not valid "HH:MM" strings are skipped.
func (s *ScheduleService) NextArrivals(ctx context.Context, routeID, stopID int) ([]domain.ArrivalTime, error) {
	raw, err := s.times.Times(ctx, routeID, stopID)
	if err != nil {
		return nil, fmt.Errorf("service.ScheduleService.NextArrivals: %w", err)
	}

	now := s.now().In(s.loc)
	nowMinutes := now.Hour()*60 + now.Minute()

	upcoming := make([]domain.ArrivalTime, 0, s.limit)
	for _, r := range raw {
		at, err := domain.ParseArrivalTime(r)
		if err != nil {
			s.log.DebugContext(ctx, "skipping malformed arrival time",
				"route_id", routeID,
				"stop_id", stopID,
				"value", r,
			)
			continue
		}
		if at.Minutes() < nowMinutes {
			continue
		}
		upcoming = append(upcoming, at)
		if len(upcoming) == s.limit {
			break
		}
	}
	return upcoming, nil
}

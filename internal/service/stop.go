// Package service contains the query-resolution logic of the transit bot.
// Services orchestrate the directory cache, the upstream client and the
// favorites repo. No SQL or HTTP lives here; services depend on interfaces,
// not implementations.
package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/pkordes/transit-bot/internal/domain"
)

// Directory is the read side of the directory cache the services depend on.
// *directory.Cache satisfies it.
type Directory interface {
	Routes(ctx context.Context) ([]domain.Route, error)
	Stops(ctx context.Context) ([]domain.Stop, error)
}

// StopMatcher filters stops by approximate name. *matcher.Matcher satisfies it.
type StopMatcher interface {
	Match(query string, stops []domain.Stop) []domain.Stop
}

// StopService resolves stop searches and the routes serving a stop.
type StopService struct {
	dir     Directory
	matcher StopMatcher
	limit   int
}

// NewStopService constructs a StopService. limit caps the number of search
// results returned; zero or negative means no cap.
func NewStopService(dir Directory, m StopMatcher, limit int) *StopService {
	return &StopService{dir: dir, matcher: m, limit: limit}
}

// Search returns the stops whose names approximately match query, in
// directory order. No match is an empty slice, not an error.
func (s *StopService) Search(ctx context.Context, query string) ([]domain.Stop, error) {
	stops, err := s.dir.Stops(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.StopService.Search: %w", err)
	}
	found := s.matcher.Match(query, stops)
	if s.limit > 0 && len(found) > s.limit {
		found = found[:s.limit]
	}
	return found, nil
}

// RoutesAtStop returns the routes serving stopID, numbered routes first in
// ascending number order, then routes with non-numeric labels in directory
// order. ok is false when the stop is not in the directory.
func (s *StopService) RoutesAtStop(ctx context.Context, stopID int) ([]domain.Route, bool, error) {
	stops, err := s.dir.Stops(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("service.StopService.RoutesAtStop: %w", err)
	}

	var (
		stop  domain.Stop
		found bool
	)
	for _, st := range stops {
		if st.ID == stopID {
			stop, found = st, true
			break
		}
	}
	if !found {
		return nil, false, nil
	}

	routes, err := s.dir.Routes(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("service.StopService.RoutesAtStop: %w", err)
	}
	byID := make(map[int]domain.Route, len(routes))
	for _, r := range routes {
		byID[r.ID] = r
	}

	serving := make([]domain.Route, 0, len(stop.RouteIDs))
	for _, id := range stop.RouteIDs {
		if r, ok := byID[id]; ok {
			serving = append(serving, r)
		}
	}

	numbered, unnumbered := OrderByNumber(serving)
	return append(numbered, unnumbered...), true, nil
}

// RouteNumber parses the numeric part of a route label. One trailing
// non-digit suffix is stripped first, so "7a" and "7б" are 7 and "12" is 12.
// ok is false for labels with no numeric part ("bus", "a7", "").
func RouteNumber(label string) (int, bool) {
	if label == "" {
		return 0, false
	}
	digits := label
	if last, size := utf8.DecodeLastRuneInString(label); last < '0' || last > '9' {
		digits = label[:len(label)-size]
	}
	if digits == "" {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// OrderByNumber splits routes into those with a numeric label, sorted
// ascending by number (ties by label), and the rest in their original order.
func OrderByNumber(routes []domain.Route) (numbered, unnumbered []domain.Route) {
	type keyed struct {
		n     int
		route domain.Route
	}
	var withNumber []keyed
	unnumbered = []domain.Route{}
	for _, r := range routes {
		if n, ok := RouteNumber(r.Number); ok {
			withNumber = append(withNumber, keyed{n: n, route: r})
			continue
		}
		unnumbered = append(unnumbered, r)
	}

	sort.SliceStable(withNumber, func(i, j int) bool {
		if withNumber[i].n != withNumber[j].n {
			return withNumber[i].n < withNumber[j].n
		}
		return withNumber[i].route.Number < withNumber[j].route.Number
	})

	numbered = make([]domain.Route, len(withNumber))
	for i, k := range withNumber {
		numbered[i] = k.route
	}
	return numbered, unnumbered
}

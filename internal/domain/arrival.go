package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ArrivalTime is a wall-clock time of day with no date component.
// Hour may exceed 23 for services that run past midnight ("24:15").
type ArrivalTime struct {
	Hour   int
	Minute int
}

// ParseArrivalTime parses an upstream "HH:MM" string.
func ParseArrivalTime(s string) (ArrivalTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return ArrivalTime{}, fmt.Errorf("%w: arrival time %q is not HH:MM", ErrValidation, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 47 {
		return ArrivalTime{}, fmt.Errorf("%w: arrival time %q has invalid hour", ErrValidation, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return ArrivalTime{}, fmt.Errorf("%w: arrival time %q has invalid minute", ErrValidation, s)
	}
	return ArrivalTime{Hour: h, Minute: m}, nil
}

// Minutes returns the number of minutes since midnight.
func (a ArrivalTime) Minutes() int {
	return a.Hour*60 + a.Minute
}

// String formats the time as "HH:MM".
func (a ArrivalTime) String() string {
	return fmt.Sprintf("%02d:%02d", a.Hour, a.Minute)
}

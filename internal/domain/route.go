// Package domain contains the core data types for the transit bot.
// This package has zero external dependencies and is imported by every other
// internal package (transit, directory, service, repo, bot).
package domain

// Route is a numbered transit line with an ordered sequence of stops.
// Number is the label shown to riders ("12", "7a", "bus"); it is not
// guaranteed to be numeric.
type Route struct {
	ID          int    `json:"id"`
	Number      string `json:"number"`
	Description string `json:"description"`
	StopIDs     []int  `json:"stop_ids"`
}

// Serves reports whether stopID is on the route.
func (r Route) Serves(stopID int) bool {
	for _, id := range r.StopIDs {
		if id == stopID {
			return true
		}
	}
	return false
}

package domain

// Stop is a physical location (checkpoint) served by one or more routes.
type Stop struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Code         string  `json:"code"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	ProjectedLat float64 `json:"projected_lat"`
	ProjectedLon float64 `json:"projected_lon"`
	Heading      float64 `json:"heading"`
	RouteIDs     []int   `json:"route_ids"`
}

// Title is the button caption for a stop: its name followed by the
// description when one is present ("Central Square (to the station)").
func (s Stop) Title() string {
	if s.Description == "" {
		return s.Name
	}
	return s.Name + " (" + s.Description + ")"
}

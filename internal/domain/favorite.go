package domain

// Favorite is a (route, stop) pair saved under a user-chosen label,
// scoped to one chat. At most one favorite exists per (ChatID, RouteID, StopID).
type Favorite struct {
	Label   string
	ChatID  int64
	StopID  int
	RouteID int
}

// DefaultFavoriteLabel is the label used when the user does not supply one.
func DefaultFavoriteLabel(routeNumber, stopName string) string {
	return routeNumber + "/" + stopName
}

package bot

import (
	"fmt"
	"strings"

	"github.com/pkordes/transit-bot/internal/domain"
)

const (
	msgHelp = "Send me the name of a stop to find it.\n\n" +
		"/favorites - your saved stops and routes\n" +
		"/clear - delete all favorites"
	msgStopsFound     = "Stops similar to your query:"
	msgNoStops        = "No similar stops found, try another name."
	msgRoutesAtStop   = "Routes at %s:"
	msgNoRoutes       = "No routes serve %s."
	msgStopNotFound   = "That stop is no longer listed."
	msgRouteNotFound  = "That route or stop is no longer listed."
	msgUpstreamFailed = "Could not fetch transit data right now, please try again later."
	msgStoreFailed    = "Could not access your favorites right now, please try again later."
	msgNothingSoon    = "No more buses of route %s at %s today."
	msgFavorites      = "Your favorites:"
	msgNoFavorites    = "You have no favorites yet. Find a stop, pick a route and save it."
	msgCleared        = "Deleted %d favorite(s)."
	msgOffer          = "Save route %s at %s to favorites?"
	msgAskLabel       = "Send a name for this favorite, or - to use %q."
	msgSaved          = "Saved to favorites as %q."
	msgAlreadySaved   = "This route and stop are already in your favorites."
	msgOfferExpired   = "This offer has expired."
	msgBadLabel       = "That name can't be used (%s). Send another one, or - for the default."
)

const (
	optionYes = "Yes"
	optionNo  = "No"
)

// scheduleText formats the next arrivals of route at stop.
func scheduleText(route domain.Route, stop domain.Stop, times []domain.ArrivalTime) string {
	if len(times) == 0 {
		return fmt.Sprintf(msgNothingSoon, route.Number, stop.Name)
	}
	formatted := make([]string, len(times))
	for i, t := range times {
		formatted[i] = t.String()
	}
	return fmt.Sprintf("Route %s at %s, next arrivals: %s", route.Number, stop.Name, strings.Join(formatted, ", "))
}

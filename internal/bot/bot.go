package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkordes/transit-bot/internal/domain"
	"github.com/pkordes/transit-bot/internal/session"
)

// Directory resolves route and stop IDs. *directory.Cache satisfies it.
type Directory interface {
	Route(ctx context.Context, id int) (domain.Route, bool, error)
	Stop(ctx context.Context, id int) (domain.Stop, bool, error)
}

// StopFinder searches stops and lists the routes serving one.
// *service.StopService satisfies it.
type StopFinder interface {
	Search(ctx context.Context, query string) ([]domain.Stop, error)
	RoutesAtStop(ctx context.Context, stopID int) ([]domain.Route, bool, error)
}

// Scheduler resolves the next arrivals. *service.ScheduleService satisfies it.
type Scheduler interface {
	NextArrivals(ctx context.Context, routeID, stopID int) ([]domain.ArrivalTime, error)
}

// Favorites is the favorites business API. *service.FavoriteService satisfies it.
type Favorites interface {
	Exists(ctx context.Context, chatID int64, routeID, stopID int) (bool, error)
	Save(ctx context.Context, fav domain.Favorite) (bool, error)
	List(ctx context.Context, chatID int64) ([]domain.Favorite, error)
	Clear(ctx context.Context, chatID int64) (int64, error)
}

// Sessions stores the favorite-save conversation per chat.
// *session.Store satisfies it.
type Sessions interface {
	Get(chatID int64) (session.Session, bool)
	Put(chatID int64, s session.Session)
	Delete(chatID int64)
}

// Deps are the collaborators a Bot is wired with in main.go.
type Deps struct {
	Gateway   Gateway
	Directory Directory
	Stops     StopFinder
	Schedule  Scheduler
	Favorites Favorites
	Sessions  Sessions
	Logger    *slog.Logger
}

// Bot handles inbound chat events. All state lives in its dependencies, so a
// Bot is safe for concurrent use as long as each chat's events are handled
// in order.
type Bot struct {
	gw        Gateway
	dir       Directory
	stops     StopFinder
	schedule  Scheduler
	favorites Favorites
	sessions  Sessions
	log       *slog.Logger
}

// New constructs a Bot from its dependencies.
func New(d Deps) *Bot {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Bot{
		gw:        d.Gateway,
		dir:       d.Directory,
		stops:     d.Stops,
		schedule:  d.Schedule,
		favorites: d.Favorites,
		sessions:  d.Sessions,
		log:       log,
	}
}

// HandleText handles a text message: a command, the label of a pending
// favorite, or otherwise a stop search. The returned error reports a failure
// to talk to the gateway; lookup and store failures are answered in the chat.
func (b *Bot) HandleText(ctx context.Context, ev TextReceived) error {
	text := strings.TrimSpace(ev.Text)

	if strings.HasPrefix(text, "/") {
		return b.handleCommand(ctx, ev.ChatID, text)
	}

	if sess, ok := b.sessions.Get(ev.ChatID); ok && sess.State == session.AwaitingLabel {
		return b.completeSave(ctx, ev.ChatID, sess, text)
	}

	return b.searchStops(ctx, ev.ChatID, text)
}

// HandleOption handles a button press. The event is always acknowledged
// first so the platform stops showing progress on the button.
func (b *Bot) HandleOption(ctx context.Context, ev OptionSelected) error {
	if err := b.gw.AcknowledgeEvent(ctx, ev.EventID); err != nil {
		b.log.WarnContext(ctx, "acknowledge failed", "chat_id", ev.ChatID, "error", err)
	}

	tok := parseToken(ev.Token)
	switch tok.kind {
	case tokenStop:
		return b.showRoutes(ctx, ev.ChatID, tok.stopID)
	case tokenRoute:
		return b.showSchedule(ctx, ev.ChatID, tok.routeID, tok.stopID)
	case tokenSaveYes:
		return b.acceptOffer(ctx, ev)
	case tokenSaveNo:
		return b.declineOffer(ctx, ev)
	default:
		b.log.DebugContext(ctx, "ignoring unknown option", "chat_id", ev.ChatID, "token", ev.Token)
		return nil
	}
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, text string) error {
	cmd, _, _ := strings.Cut(strings.Fields(text)[0], "@")
	switch cmd {
	case "/favorites":
		return b.listFavorites(ctx, chatID)
	case "/clear":
		n, err := b.favorites.Clear(ctx, chatID)
		if err != nil {
			return b.replyFailure(ctx, chatID, err)
		}
		return b.reply(ctx, chatID, fmt.Sprintf(msgCleared, n))
	default:
		return b.reply(ctx, chatID, msgHelp)
	}
}

func (b *Bot) searchStops(ctx context.Context, chatID int64, query string) error {
	stops, err := b.stops.Search(ctx, query)
	if err != nil {
		return b.replyFailure(ctx, chatID, err)
	}
	if len(stops) == 0 {
		return b.reply(ctx, chatID, msgNoStops)
	}

	options := make([]Option, len(stops))
	for i, s := range stops {
		options[i] = Option{Text: s.Title(), Token: stopToken(s.ID)}
	}
	_, err = b.gw.SendMessage(ctx, chatID, msgStopsFound, options)
	return err
}

func (b *Bot) showRoutes(ctx context.Context, chatID int64, stopID int) error {
	stop, ok, err := b.dir.Stop(ctx, stopID)
	if err != nil {
		return b.replyFailure(ctx, chatID, err)
	}
	if !ok {
		return b.reply(ctx, chatID, msgStopNotFound)
	}

	routes, ok, err := b.stops.RoutesAtStop(ctx, stopID)
	if err != nil {
		return b.replyFailure(ctx, chatID, err)
	}
	if !ok {
		return b.reply(ctx, chatID, msgStopNotFound)
	}
	if len(routes) == 0 {
		return b.reply(ctx, chatID, fmt.Sprintf(msgNoRoutes, stop.Name))
	}

	options := make([]Option, len(routes))
	for i, r := range routes {
		options[i] = Option{Text: r.Number, Token: routeToken(r.ID, stopID)}
	}
	_, err = b.gw.SendMessage(ctx, chatID, fmt.Sprintf(msgRoutesAtStop, stop.Name), options)
	return err
}

// showSchedule displays the next arrivals and, when the pair is not yet a
// favorite of the chat, opens the save offer.
func (b *Bot) showSchedule(ctx context.Context, chatID int64, routeID, stopID int) error {
	route, routeOK, err := b.dir.Route(ctx, routeID)
	if err != nil {
		return b.replyFailure(ctx, chatID, err)
	}
	stop, stopOK, err := b.dir.Stop(ctx, stopID)
	if err != nil {
		return b.replyFailure(ctx, chatID, err)
	}
	if !routeOK || !stopOK {
		return b.reply(ctx, chatID, msgRouteNotFound)
	}

	times, err := b.schedule.NextArrivals(ctx, routeID, stopID)
	if err != nil {
		return b.replyFailure(ctx, chatID, err)
	}
	if err := b.reply(ctx, chatID, scheduleText(route, stop, times)); err != nil {
		return err
	}

	return b.offerFavorite(ctx, chatID, route, stop)
}

func (b *Bot) offerFavorite(ctx context.Context, chatID int64, route domain.Route, stop domain.Stop) error {
	exists, err := b.favorites.Exists(ctx, chatID, route.ID, stop.ID)
	if err != nil {
		// The schedule was already delivered; skip the offer rather than
		// bothering the user with a store failure.
		b.log.WarnContext(ctx, "favorite lookup failed, not offering save",
			"chat_id", chatID, "route_id", route.ID, "stop_id", stop.ID, "error", err)
		return nil
	}
	if exists {
		return nil
	}

	msgID, err := b.gw.SendMessage(ctx, chatID, fmt.Sprintf(msgOffer, route.Number, stop.Name), []Option{
		{Text: optionYes, Token: saveYesToken},
		{Text: optionNo, Token: saveNoToken},
	})
	if err != nil {
		return err
	}

	b.sessions.Put(chatID, session.NewOffer(route.ID, stop.ID, msgID,
		domain.DefaultFavoriteLabel(route.Number, stop.Name)))
	return nil
}

// currentOffer returns the chat's session if it belongs to the prompt the
// button was pressed on.
func (b *Bot) currentOffer(ev OptionSelected) (session.Session, bool) {
	sess, ok := b.sessions.Get(ev.ChatID)
	if !ok || sess.PromptMessageID != ev.MessageID {
		return session.Session{}, false
	}
	return sess, true
}

func (b *Bot) acceptOffer(ctx context.Context, ev OptionSelected) error {
	sess, ok := b.currentOffer(ev)
	if !ok {
		return b.gw.EditMessage(ctx, ev.ChatID, ev.MessageID, msgOfferExpired)
	}
	next, err := sess.Accept()
	if err != nil {
		// Already awaiting a label; the question is still on screen.
		return nil
	}
	b.sessions.Put(ev.ChatID, next)
	return b.gw.EditMessage(ctx, ev.ChatID, ev.MessageID, fmt.Sprintf(msgAskLabel, next.DefaultLabel))
}

func (b *Bot) declineOffer(ctx context.Context, ev OptionSelected) error {
	if _, ok := b.currentOffer(ev); ok {
		b.sessions.Delete(ev.ChatID)
	}
	return b.gw.DeleteMessage(ctx, ev.ChatID, ev.MessageID)
}

func (b *Bot) completeSave(ctx context.Context, chatID int64, sess session.Session, text string) error {
	label, err := sess.Label(text)
	if err != nil {
		return err
	}

	created, err := b.favorites.Save(ctx, domain.Favorite{
		Label:   label,
		ChatID:  chatID,
		StopID:  sess.StopID,
		RouteID: sess.RouteID,
	})
	if errors.Is(err, domain.ErrValidation) {
		// Stay in AwaitingLabel so the next message is tried as the label.
		return b.reply(ctx, chatID, fmt.Sprintf(msgBadLabel, validationReason(err)))
	}
	b.sessions.Delete(chatID)
	if err != nil {
		return b.replyFailure(ctx, chatID, err)
	}

	confirm := fmt.Sprintf(msgSaved, strings.TrimSpace(label))
	if !created {
		confirm = msgAlreadySaved
	}
	return b.gw.EditMessage(ctx, chatID, sess.PromptMessageID, confirm)
}

func (b *Bot) listFavorites(ctx context.Context, chatID int64) error {
	favs, err := b.favorites.List(ctx, chatID)
	if err != nil {
		return b.replyFailure(ctx, chatID, err)
	}
	if len(favs) == 0 {
		return b.reply(ctx, chatID, msgNoFavorites)
	}

	options := make([]Option, len(favs))
	for i, f := range favs {
		options[i] = Option{Text: f.Label, Token: routeToken(f.RouteID, f.StopID)}
	}
	_, err = b.gw.SendMessage(ctx, chatID, msgFavorites, options)
	return err
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) error {
	_, err := b.gw.SendMessage(ctx, chatID, text, nil)
	return err
}

// replyFailure logs err and answers with the generic message for its class.
func (b *Bot) replyFailure(ctx context.Context, chatID int64, err error) error {
	b.log.ErrorContext(ctx, "request failed", "chat_id", chatID, "error", err)
	if errors.Is(err, domain.ErrStore) {
		return b.reply(ctx, chatID, msgStoreFailed)
	}
	return b.reply(ctx, chatID, msgUpstreamFailed)
}

// validationReason extracts the human-readable part of a wrapped
// domain.ErrValidation, e.g. "...: validation error: label is required" → "label is required".
func validationReason(err error) string {
	msg := err.Error()
	if _, after, ok := strings.Cut(msg, domain.ErrValidation.Error()+": "); ok {
		return after
	}
	return msg
}

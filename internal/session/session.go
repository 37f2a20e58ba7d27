// Package session holds the per-chat favorite-save conversation.
//
// A chat with no session is Idle. Showing a schedule for a (route, stop) pair
// that is not yet a favorite opens an OfferPending session; accepting moves it
// to AwaitingLabel, and the next text message closes it. Declining closes it
// directly. Sessions expire after a fixed TTL, and opening a new offer for the
// same chat replaces whatever session was there.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/bluele/gcache"
)

// DefaultTTL is how long an unanswered session is kept.
const DefaultTTL = 15 * time.Minute

// defaultCapacity bounds the number of chats with an open session.
const defaultCapacity = 10000

// ErrInvalidTransition is returned when an answer does not fit the session state.
var ErrInvalidTransition = errors.New("invalid session transition")

// State is the position of a chat in the favorite-save conversation.
type State int

const (
	Idle State = iota
	OfferPending
	AwaitingLabel
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case OfferPending:
		return "offer_pending"
	case AwaitingLabel:
		return "awaiting_label"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is the pending save of RouteID at StopID for one chat.
// PromptMessageID is the message carrying the offer; it is edited or deleted
// when the conversation ends.
type Session struct {
	State           State
	RouteID         int
	StopID          int
	PromptMessageID int
	DefaultLabel    string
}

// NewOffer returns the session opened right after a schedule is shown.
func NewOffer(routeID, stopID, promptMessageID int, defaultLabel string) Session {
	return Session{
		State:           OfferPending,
		RouteID:         routeID,
		StopID:          stopID,
		PromptMessageID: promptMessageID,
		DefaultLabel:    defaultLabel,
	}
}

// Accept moves an OfferPending session to AwaitingLabel.
func (s Session) Accept() (Session, error) {
	if s.State != OfferPending {
		return s, fmt.Errorf("%w: accept in state %s", ErrInvalidTransition, s.State)
	}
	s.State = AwaitingLabel
	return s, nil
}

// Label resolves the text received while AwaitingLabel into the label to
// store. A lone "-" selects the default label.
func (s Session) Label(text string) (string, error) {
	if s.State != AwaitingLabel {
		return "", fmt.Errorf("%w: label in state %s", ErrInvalidTransition, s.State)
	}
	if text == "-" {
		return s.DefaultLabel, nil
	}
	return text, nil
}

// Store keeps at most one Session per chat and forgets sessions after a TTL.
// It is safe for concurrent use; callers only ever touch their own chat's key.
type Store struct {
	cache gcache.Cache
}

// Option configures a Store.
type Option func(*gcache.CacheBuilder)

// WithClock sets the clock used for expiry, letting tests advance time.
func WithClock(clock gcache.Clock) Option {
	return func(b *gcache.CacheBuilder) { b.Clock(clock) }
}

// NewStore constructs a Store whose sessions expire after ttl.
// A non-positive ttl falls back to DefaultTTL.
func NewStore(ttl time.Duration, opts ...Option) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	b := gcache.New(defaultCapacity).LRU().Expiration(ttl)
	for _, opt := range opts {
		opt(b)
	}
	return &Store{cache: b.Build()}
}

// Get returns the chat's session. ok is false when the chat is Idle,
// including when its session expired.
func (s *Store) Get(chatID int64) (Session, bool) {
	v, err := s.cache.Get(chatID)
	if err != nil {
		return Session{}, false
	}
	sess, ok := v.(Session)
	return sess, ok
}

// Put stores sess for the chat, replacing any previous session and
// restarting its expiry.
func (s *Store) Put(chatID int64, sess Session) {
	// gcache only fails Set for a nil key or a failing serialize func.
	_ = s.cache.Set(chatID, sess)
}

// Delete closes the chat's session.
func (s *Store) Delete(chatID int64) {
	s.cache.Remove(chatID)
}

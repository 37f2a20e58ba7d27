// Package bot implements the conversation: it turns inbound chat events into
// stop searches, route listings, schedules and favorites, and drives the
// favorite-save exchange. It talks to the chat platform only through Gateway.
package bot

import "context"

// Option is one interactive button under a message.
// Token is what comes back in OptionSelected when the button is pressed.
type Option struct {
	Text  string
	Token string
}

// Gateway is the capability set the bot requires of the messaging platform.
// *telegram.Gateway satisfies it.
type Gateway interface {
	// SendMessage posts text to the chat, with one button per row when
	// options is non-empty, and returns the new message's ID.
	SendMessage(ctx context.Context, chatID int64, text string, options []Option) (int, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	AcknowledgeEvent(ctx context.Context, eventID string) error
}

// TextReceived is a plain text message or command from a chat.
type TextReceived struct {
	ChatID int64
	Text   string
}

// OptionSelected is a button press on a message the bot sent.
type OptionSelected struct {
	EventID   string
	ChatID    int64
	MessageID int
	Token     string
}

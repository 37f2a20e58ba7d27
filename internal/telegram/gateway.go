// Package telegram adapts the Telegram Bot API to the bot package: Gateway
// sends and edits messages, Listener long-polls updates and feeds them to the
// bot one chat at a time.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pkordes/transit-bot/internal/bot"
)

// sender is the part of *tgbotapi.BotAPI the Gateway uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Gateway implements bot.Gateway on top of the Bot API.
type Gateway struct {
	api sender
}

var _ bot.Gateway = (*Gateway)(nil)

// NewGateway wraps api, typically a *tgbotapi.BotAPI.
func NewGateway(api sender) *Gateway {
	return &Gateway{api: api}
}

// SendMessage sends text with one inline button per row.
func (g *Gateway) SendMessage(ctx context.Context, chatID int64, text string, options []bot.Option) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if len(options) > 0 {
		msg.ReplyMarkup = keyboard(options)
	}
	sent, err := g.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("telegram.Gateway.SendMessage: %w", err)
	}
	return sent.MessageID, nil
}

// EditMessage replaces the text of a message. Any inline keyboard on it is
// removed.
func (g *Gateway) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := g.api.Request(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		return fmt.Errorf("telegram.Gateway.EditMessage: %w", err)
	}
	return nil
}

func (g *Gateway) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := g.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("telegram.Gateway.DeleteMessage: %w", err)
	}
	return nil
}

// AcknowledgeEvent answers a callback query without showing a notification.
func (g *Gateway) AcknowledgeEvent(ctx context.Context, eventID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := g.api.Request(tgbotapi.NewCallback(eventID, "")); err != nil {
		return fmt.Errorf("telegram.Gateway.AcknowledgeEvent: %w", err)
	}
	return nil
}

func keyboard(options []bot.Option) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, len(options))
	for i, o := range options {
		rows[i] = tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(o.Text, o.Token))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

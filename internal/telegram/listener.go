package telegram

import (
	"context"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/pkordes/transit-bot/internal/bot"
)

// pollTimeout is the long-polling timeout passed to getUpdates, in seconds.
const pollTimeout = 60

// Handler consumes chat events. *bot.Bot satisfies it.
type Handler interface {
	HandleText(ctx context.Context, ev bot.TextReceived) error
	HandleOption(ctx context.Context, ev bot.OptionSelected) error
}

// updateSource is the part of *tgbotapi.BotAPI the Listener uses.
type updateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type job func(ctx context.Context)

// Listener receives updates and dispatches them to a Handler. Events of one
// chat are handled strictly in arrival order; different chats run in
// parallel.
type Listener struct {
	src     updateSource
	handler Handler
	log     *slog.Logger

	mu     sync.Mutex
	queues map[int64][]job // present while a drain goroutine runs for the chat
	wg     sync.WaitGroup
}

// NewListener constructs a Listener.
func NewListener(src updateSource, handler Handler, log *slog.Logger) *Listener {
	return &Listener{
		src:     src,
		handler: handler,
		log:     log,
		queues:  make(map[int64][]job),
	}
}

// Run polls until ctx is cancelled or the update channel closes, then waits
// for in-flight events to finish.
func (l *Listener) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := l.src.GetUpdatesChan(u)

	// In-flight events finish even after shutdown starts.
	jobCtx := context.WithoutCancel(ctx)

	defer l.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			l.src.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			l.dispatch(jobCtx, update)
		}
	}
}

func (l *Listener) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		cq := update.CallbackQuery
		ev := bot.OptionSelected{
			EventID:   cq.ID,
			ChatID:    cq.Message.Chat.ID,
			MessageID: cq.Message.MessageID,
			Token:     cq.Data,
		}
		l.enqueue(ctx, ev.ChatID, func(ctx context.Context) {
			l.observe(ctx, "option", ev.ChatID, func(ctx context.Context) error {
				return l.handler.HandleOption(ctx, ev)
			})
		})
	case update.Message != nil && update.Message.Chat != nil && update.Message.Text != "":
		ev := bot.TextReceived{ChatID: update.Message.Chat.ID, Text: update.Message.Text}
		l.enqueue(ctx, ev.ChatID, func(ctx context.Context) {
			l.observe(ctx, "text", ev.ChatID, func(ctx context.Context) error {
				return l.handler.HandleText(ctx, ev)
			})
		})
	default:
		l.log.DebugContext(ctx, "ignoring update", "update_id", update.UpdateID)
	}
}

// observe handles one event and logs its outcome under a fresh event ID.
func (l *Listener) observe(ctx context.Context, kind string, chatID int64, handle func(context.Context) error) {
	start := time.Now()
	log := l.log.With("event_id", uuid.NewString(), "kind", kind, "chat_id", chatID)

	if err := handle(ctx); err != nil {
		log.ErrorContext(ctx, "event failed", "duration_ms", time.Since(start).Milliseconds(), "error", err)
		return
	}
	log.InfoContext(ctx, "event handled", "duration_ms", time.Since(start).Milliseconds())
}

func (l *Listener) enqueue(ctx context.Context, chatID int64, j job) {
	l.mu.Lock()
	q, running := l.queues[chatID]
	l.queues[chatID] = append(q, j)
	l.mu.Unlock()

	if running {
		return
	}
	l.wg.Add(1)
	go l.drain(ctx, chatID)
}

func (l *Listener) drain(ctx context.Context, chatID int64) {
	defer l.wg.Done()
	for {
		l.mu.Lock()
		q := l.queues[chatID]
		if len(q) == 0 {
			delete(l.queues, chatID)
			l.mu.Unlock()
			return
		}
		next := q[0]
		l.queues[chatID] = q[1:]
		l.mu.Unlock()

		next(ctx)
	}
}

package telegram

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/time/rate"
	tb "gopkg.in/tucnak/telebot.v2"
)

// Bot delivers messages to a single chat and answers commands sent there.
type Bot struct {
	bot     *tb.Bot
	chat    *tb.Chat
	boot    time.Time
	limiter *rate.Limiter
	log     func(v ...interface{})
}

func New(token string, chatID int64, log func(v ...interface{})) (*Bot, error) {
	b, err := tb.NewBot(tb.Settings{
		Token:  token,
		Poller: &tb.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: couldn't create bot: %w", err)
	}
	chat, err := b.ChatByID(strconv.FormatInt(chatID, 10))
	if err != nil {
		return nil, fmt.Errorf("telegram: couldn't create chat %d: %w", chatID, err)
	}
	return &Bot{
		bot:  b,
		chat: chat,
		boot: time.Now(),
		// Wait between messages to avoid rate limit errors
		limiter: rate.NewLimiter(rate.Every(50*time.Millisecond), 1),
		log:     log,
	}, nil
}

// Send sends an HTML formatted message to the chat.
func (b *Bot) Send(ctx context.Context, msg string) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram: couldn't wait to send: %w", err)
	}
	if _, err := b.bot.Send(b.chat, msg, tb.ModeHTML); err != nil {
		return fmt.Errorf("telegram: couldn't send message: %w", err)
	}
	return nil
}

// HandleCommand registers a command handler. The returned text is sent back
// to the chat.
func (b *Bot) HandleCommand(command string, handler func(payload string) string) {
	b.bot.Handle(fmt.Sprintf("/%s", command), func(m *tb.Message) {
		if m.Chat.ID != b.chat.ID {
			return
		}
		if m.Time().Before(b.boot) {
			return
		}
		reply := handler(m.Payload)
		if reply == "" {
			return
		}
		if err := b.Send(context.Background(), reply); err != nil {
			b.log(err)
		}
	})
}

// Run polls for commands until the context is canceled.
func (b *Bot) Run(ctx context.Context) error {
	go b.bot.Start()
	defer b.bot.Stop()
	<-ctx.Done()
	return nil
}

package messenger

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
)

// Telegram adapts the bot client to the narrow Messenger port.
type Telegram struct {
	bot *bot.Bot
}

func NewTelegram(b *bot.Bot) *Telegram {
	return &Telegram{bot: b}
}

func (m *Telegram) Send(ctx context.Context, chatID int64, text string) error {
	_, err := m.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

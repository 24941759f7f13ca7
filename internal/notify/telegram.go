package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier sends batch and inbox updates to a Telegram chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier connects to the Telegram bot API.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}

	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// Send delivers one HTML-formatted message.
func (t *TelegramNotifier) Send(message string) error {
	msg := tgbotapi.NewMessage(t.chatID, message)
	msg.ParseMode = "HTML"
	_, err := t.bot.Send(msg)
	return err
}

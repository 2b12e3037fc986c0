package notifier

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier отправляет уведомления через Bot API
type TelegramNotifier struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramNotifier создает нотификатор поверх Bot API
func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}
	log.Printf("[TelegramNotifier] Авторизован как @%s", bot.Self.UserName)
	return &TelegramNotifier{bot: bot}, nil
}

// SendToChat отправляет текст в чат. Ошибка доставки логируется
// и не прерывает вызывающую сторону: чат мог заблокировать бота.
func (n *TelegramNotifier) SendToChat(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		log.Printf("[TelegramNotifier] Ошибка отправки в чат %d: %v", chatID, err)
	}
}

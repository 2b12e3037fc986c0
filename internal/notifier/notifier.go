package notifier

import "log"

// Notifier отправляет сообщения участникам. Реализации не должны
// возвращать ошибку наружу бизнес-логики: доставка уведомлений
// не влияет на игровые переходы.
type Notifier interface {
	// SendToChat отправляет текст в личный чат по telegram id
	SendToChat(chatID int64, text string)
}

// LogNotifier пишет уведомления в лог вместо отправки.
// Используется в тестах и когда бот выключен в конфигурации.
type LogNotifier struct{}

// NewLogNotifier создает заглушку-нотификатор
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// SendToChat пишет уведомление в лог
func (n *LogNotifier) SendToChat(chatID int64, text string) {
	log.Printf("[LogNotifier] Уведомление для чата %d: %s", chatID, text)
}

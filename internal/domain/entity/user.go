package entity

import (
	"strings"
	"time"
)

// PendingTgPrefix — заглушка внешнего идентификатора для участников,
// загруженных из списка допуска до их первого контакта с ботом.
const PendingTgPrefix = "pending:"

// User представляет участника квеста.
// Внешняя идентичность: telegram id (уникален) + телефон (уникален).
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TgID      string    `gorm:"size:64;uniqueIndex" json:"tg_id"`
	Phone     string    `gorm:"size:32;uniqueIndex" json:"phone"`
	FirstName string    `gorm:"size:255" json:"first_name"`
	LastName  string    `gorm:"size:255" json:"last_name"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// IsPending проверяет, что пользователь импортирован из списка допуска,
// но ещё не связан с реальным telegram id.
func (u *User) IsPending() bool {
	return strings.HasPrefix(u.TgID, PendingTgPrefix)
}

package entity

import (
	"strings"
	"time"
)

// Роли участников внутри команды
const (
	RolePlayer  = "PLAYER"
	RoleCaptain = "CAPTAIN"
)

// TeamMember представляет членство пользователя в команде.
// Пара (team_id, user_id) уникальна; у команды не более одного капитана.
type TeamMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TeamID    uint      `gorm:"not null;index;uniqueIndex:uq_team_user" json:"team_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:uq_team_user" json:"user_id"`
	Role      string    `gorm:"size:50;not null;default:'PLAYER'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (TeamMember) TableName() string {
	return "team_members"
}

// IsCaptain проверяет, что участник — капитан команды.
func (m *TeamMember) IsCaptain() bool {
	return strings.EqualFold(m.Role, RoleCaptain)
}

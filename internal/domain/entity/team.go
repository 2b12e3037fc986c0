package entity

import (
	"fmt"
	"regexp"
	"time"
)

// DefaultTeamNamePattern распознаёт автоматически сгенерированное имя «Команда №N».
var DefaultTeamNamePattern = regexp.MustCompile(`^Команда №\d+$`)

// DefaultTeamName возвращает сгенерированное имя для команды с номером n.
func DefaultTeamName(n int) string {
	return fmt.Sprintf("Команда №%d", n)
}

// Team представляет команду участников.
// Маршрут (RouteID) назначается один раз, когда команда становится полной.
// CurrentSeq — 1-based номер текущего чекпойнта; 0 — квест не начат.
type Team struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Name       string     `gorm:"size:255;not null;uniqueIndex" json:"name"`
	IsLocked   bool       `gorm:"not null;default:false" json:"is_locked"`
	RouteID    *uint      `gorm:"index" json:"route_id"`
	CurrentSeq int        `gorm:"not null;default:0" json:"current_seq"`
	CanRename  bool       `gorm:"not null;default:true" json:"can_rename"`
	StartedAt  *time.Time `gorm:"index" json:"started_at"`
	FinishedAt *time.Time `gorm:"index" json:"finished_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (Team) TableName() string {
	return "teams"
}

// HasDefaultName проверяет, что имя команды всё ещё сгенерированное.
func (t *Team) HasDefaultName() bool {
	return DefaultTeamNamePattern.MatchString(t.Name)
}

// Progress возвращает явное состояние прохождения, выведенное из строки команды.
// Единственное место, где поля started_at/finished_at/current_seq
// интерпретируются как состояние машины.
func (t *Team) Progress() Progress {
	switch {
	case t.FinishedAt != nil:
		return Progress{State: StateFinished}
	case t.StartedAt != nil:
		return Progress{State: StateInProgress, Seq: t.CurrentSeq}
	case t.RouteID != nil:
		return Progress{State: StateReady}
	default:
		return Progress{State: StateUnassigned}
	}
}

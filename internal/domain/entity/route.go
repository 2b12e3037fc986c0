package entity

import (
	"time"
)

// Route представляет линейный маршрут — упорядоченный набор чекпойнтов.
// Команде назначается ровно один маршрут, когда она становится полной.
type Route struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"size:64;not null;uniqueIndex" json:"code"`
	Title     string    `gorm:"size:255" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Checkpoints []Checkpoint `gorm:"foreignKey:RouteID" json:"checkpoints,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (Route) TableName() string {
	return "routes"
}

// IsEligible проверяет, что маршрут пригоден для назначения команде:
// хотя бы один чекпойнт.
func (r *Route) IsEligible() bool {
	return len(r.Checkpoints) > 0
}

// Checkpoint представляет одну точку маршрута.
// Seq — 1-based позиция, уникальная в пределах маршрута; позиции должны
// идти подряд начиная с 1, иначе «всего чекпойнтов» теряет смысл.
type Checkpoint struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RouteID   uint      `gorm:"not null;index;uniqueIndex:uq_route_seq" json:"route_id"`
	Seq       int       `gorm:"not null;uniqueIndex:uq_route_seq" json:"seq"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Riddle    string    `gorm:"type:text;not null" json:"riddle"`
	PhotoHint string    `gorm:"type:text" json:"photo_hint"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Checkpoint) TableName() string {
	return "checkpoints"
}

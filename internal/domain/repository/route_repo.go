package repository

import (
	"github.com/yourusername/quest-api/internal/domain/entity"
)

// RouteRepository определяет методы для работы с маршрутами и чекпойнтами.
// Маршруты и чекпойнты — справочные данные, настраиваемые организатором.
type RouteRepository interface {
	Create(route *entity.Route) error
	Update(route *entity.Route) error
	Delete(id uint) error
	GetByID(id uint) (*entity.Route, error)
	GetByCode(code string) (*entity.Route, error)
	List() ([]entity.Route, error)

	// ListEligible возвращает маршруты, пригодные для назначения
	// (хотя бы один чекпойнт), по возрастанию id.
	ListEligible() ([]entity.Route, error)

	CreateCheckpoint(cp *entity.Checkpoint) error
	UpdateCheckpoint(cp *entity.Checkpoint) error
	DeleteCheckpoint(id uint) error
	GetCheckpointByID(id uint) (*entity.Checkpoint, error)
	GetCheckpointBySeq(routeID uint, seq int) (*entity.Checkpoint, error)
	CountCheckpoints(routeID uint) (int64, error)
}

package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/quest-api/internal/domain/entity"
	apperrors "github.com/yourusername/quest-api/internal/pkg/errors"
)

// RouteRepo реализует repository.RouteRepository
type RouteRepo struct {
	db *gorm.DB
}

// NewRouteRepo создает новый репозиторий маршрутов
func NewRouteRepo(db *gorm.DB) *RouteRepo {
	return &RouteRepo{db: db}
}

// Create создает новый маршрут
func (r *RouteRepo) Create(route *entity.Route) error {
	return r.db.Create(route).Error
}

// Update обновляет маршрут
func (r *RouteRepo) Update(route *entity.Route) error {
	return r.db.Save(route).Error
}

// Delete удаляет маршрут вместе с чекпойнтами
func (r *RouteRepo) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("route_id = ?", id).Delete(&entity.Checkpoint{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.Route{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

// GetByID возвращает маршрут с чекпойнтами, упорядоченными по seq
func (r *RouteRepo) GetByID(id uint) (*entity.Route, error) {
	var route entity.Route
	err := r.db.
		Preload("Checkpoints", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		First(&route, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &route, nil
}

// GetByCode возвращает маршрут по коду
func (r *RouteRepo) GetByCode(code string) (*entity.Route, error) {
	var route entity.Route
	err := r.db.
		Preload("Checkpoints", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		Where("code = ?", code).
		First(&route).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &route, nil
}

// List возвращает все маршруты с чекпойнтами
func (r *RouteRepo) List() ([]entity.Route, error) {
	var routes []entity.Route
	err := r.db.
		Preload("Checkpoints", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		Order("id ASC").
		Find(&routes).Error
	return routes, err
}

// ListEligible возвращает маршруты, пригодные для назначения:
// хотя бы один чекпойнт, по возрастанию id (стабильный порядок обхода).
func (r *RouteRepo) ListEligible() ([]entity.Route, error) {
	var routes []entity.Route
	err := r.db.
		Preload("Checkpoints", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		Where("EXISTS (SELECT 1 FROM checkpoints WHERE checkpoints.route_id = routes.id)").
		Order("id ASC").
		Find(&routes).Error
	return routes, err
}

// CreateCheckpoint создает чекпойнт
func (r *RouteRepo) CreateCheckpoint(cp *entity.Checkpoint) error {
	return r.db.Create(cp).Error
}

// UpdateCheckpoint обновляет чекпойнт
func (r *RouteRepo) UpdateCheckpoint(cp *entity.Checkpoint) error {
	return r.db.Save(cp).Error
}

// DeleteCheckpoint удаляет чекпойнт
func (r *RouteRepo) DeleteCheckpoint(id uint) error {
	res := r.db.Delete(&entity.Checkpoint{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetCheckpointByID возвращает чекпойнт по ID
func (r *RouteRepo) GetCheckpointByID(id uint) (*entity.Checkpoint, error) {
	var cp entity.Checkpoint
	err := r.db.First(&cp, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &cp, nil
}

// GetCheckpointBySeq возвращает чекпойнт маршрута по позиции
func (r *RouteRepo) GetCheckpointBySeq(routeID uint, seq int) (*entity.Checkpoint, error) {
	var cp entity.Checkpoint
	err := r.db.Where("route_id = ? AND seq = ?", routeID, seq).First(&cp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &cp, nil
}

// CountCheckpoints возвращает количество чекпойнтов маршрута
func (r *RouteRepo) CountCheckpoints(routeID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Checkpoint{}).Where("route_id = ?", routeID).Count(&count).Error
	return count, err
}

package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/quest-api/internal/domain/entity"
	apperrors "github.com/yourusername/quest-api/internal/pkg/errors"
)

// TeamRepo реализует repository.TeamRepository
type TeamRepo struct {
	db *gorm.DB
}

// NewTeamRepo создает новый репозиторий команд
func NewTeamRepo(db *gorm.DB) *TeamRepo {
	return &TeamRepo{db: db}
}

// Create создает новую команду
func (r *TeamRepo) Create(team *entity.Team) error {
	return r.db.Create(team).Error
}

// GetByID возвращает команду по ID
func (r *TeamRepo) GetByID(id uint) (*entity.Team, error) {
	var team entity.Team
	err := r.db.First(&team, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &team, nil
}

// GetByName возвращает команду по имени
func (r *TeamRepo) GetByName(name string) (*entity.Team, error) {
	var team entity.Team
	err := r.db.Where("name = ?", name).First(&team).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &team, nil
}

// List возвращает все команды по возрастанию id
func (r *TeamRepo) List() ([]entity.Team, error) {
	var teams []entity.Team
	err := r.db.Order("id ASC").Find(&teams).Error
	return teams, err
}

// ListByRoute возвращает команды, назначенные на маршрут
func (r *TeamRepo) ListByRoute(routeID uint) ([]entity.Team, error) {
	var teams []entity.Team
	err := r.db.Where("route_id = ?", routeID).Order("id ASC").Find(&teams).Error
	return teams, err
}

// ListStartedUnfinished возвращает команды, которые стартовали и ещё не
// финишировали — для возобновления вотчеров после перезапуска.
func (r *TeamRepo) ListStartedUnfinished() ([]entity.Team, error) {
	var teams []entity.Team
	err := r.db.
		Where("started_at IS NOT NULL AND finished_at IS NULL").
		Order("id ASC").
		Find(&teams).Error
	return teams, err
}

// ListUnlocked возвращает открытые для набора команды по возрастанию id
func (r *TeamRepo) ListUnlocked() ([]entity.Team, error) {
	var teams []entity.Team
	err := r.db.Where("is_locked = ?", false).Order("id ASC").Find(&teams).Error
	return teams, err
}

// Count возвращает общее количество команд
func (r *TeamRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entity.Team{}).Count(&count).Error
	return count, err
}

// CountByRoute возвращает количество команд, назначенных на маршрут
func (r *TeamRepo) CountByRoute(routeID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Team{}).Where("route_id = ?", routeID).Count(&count).Error
	return count, err
}

// Update обновляет команду
func (r *TeamRepo) Update(team *entity.Team) error {
	return r.db.Save(team).Error
}

// SetLockedAll открывает или закрывает набор во все команды разом
func (r *TeamRepo) SetLockedAll(locked bool) error {
	return r.db.Model(&entity.Team{}).Where("1 = 1").Update("is_locked", locked).Error
}

// UseRename одноразово переименовывает команду. Guard «can_rename = true»
// гарантирует, что право не выдаётся повторно даже при гонке запросов.
func (r *TeamRepo) UseRename(teamID uint, name string) (bool, error) {
	res := r.db.Model(&entity.Team{}).
		Where("id = ? AND can_rename = ?", teamID, true).
		Updates(map[string]interface{}{"name": name, "can_rename": false})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AssignRoute назначает маршрут команде, если он ещё не назначен
func (r *TeamRepo) AssignRoute(teamID, routeID uint) (bool, error) {
	res := r.db.Model(&entity.Team{}).
		Where("id = ? AND route_id IS NULL", teamID).
		Update("route_id", routeID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkStarted выставляет started_at и первый чекпойнт ровно один раз
func (r *TeamRepo) MarkStarted(teamID uint, at time.Time) (bool, error) {
	res := r.db.Model(&entity.Team{}).
		Where("id = ? AND started_at IS NULL", teamID).
		Updates(map[string]interface{}{"started_at": at, "current_seq": 1})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AdvanceCheckpoint переводит current_seq из fromSeq в toSeq.
// Повторный апрув того же чекпойнта не пройдёт условие WHERE и схлопнется.
func (r *TeamRepo) AdvanceCheckpoint(teamID uint, fromSeq, toSeq int) (bool, error) {
	res := r.db.Model(&entity.Team{}).
		Where("id = ? AND current_seq = ? AND finished_at IS NULL", teamID, fromSeq).
		Update("current_seq", toSeq)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkFinished выставляет finished_at ровно один раз
func (r *TeamRepo) MarkFinished(teamID uint, at time.Time) (bool, error) {
	res := r.db.Model(&entity.Team{}).
		Where("id = ? AND finished_at IS NULL", teamID).
		Update("finished_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ResetProgressAll сбрасывает игровой прогресс всех команд
func (r *TeamRepo) ResetProgressAll() error {
	return r.db.Model(&entity.Team{}).Where("1 = 1").Updates(map[string]interface{}{
		"started_at":  nil,
		"finished_at": nil,
		"current_seq": 0,
	}).Error
}

package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/quest-api/internal/domain/entity"
	apperrors "github.com/yourusername/quest-api/internal/pkg/errors"
)

// MemberRepo реализует repository.MemberRepository
type MemberRepo struct {
	db *gorm.DB
}

// NewMemberRepo создает новый репозиторий членств
func NewMemberRepo(db *gorm.DB) *MemberRepo {
	return &MemberRepo{db: db}
}

// Create создает новое членство
func (r *MemberRepo) Create(member *entity.TeamMember) error {
	return r.db.Create(member).Error
}

// GetByUserID возвращает членство пользователя (у пользователя не более одной команды)
func (r *MemberRepo) GetByUserID(userID uint) (*entity.TeamMember, error) {
	var member entity.TeamMember
	err := r.db.Where("user_id = ?", userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

// GetCaptain возвращает капитана команды
func (r *MemberRepo) GetCaptain(teamID uint) (*entity.TeamMember, error) {
	var member entity.TeamMember
	err := r.db.
		Where("team_id = ? AND role = ?", teamID, entity.RoleCaptain).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

// ListByTeam возвращает состав команды в порядке вступления
func (r *MemberRepo) ListByTeam(teamID uint) ([]entity.TeamMember, error) {
	var members []entity.TeamMember
	err := r.db.
		Preload("User").
		Where("team_id = ?", teamID).
		Order("id ASC").
		Find(&members).Error
	return members, err
}

// CountByTeam возвращает размер состава команды
func (r *MemberRepo) CountByTeam(teamID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.TeamMember{}).Where("team_id = ?", teamID).Count(&count).Error
	return count, err
}

// SetCaptain назначает капитана: снимаем текущего и назначаем нового
// в одной транзакции, чтобы инвариант «один капитан» не нарушался.
func (r *MemberRepo) SetCaptain(teamID, memberID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.TeamMember{}).
			Where("team_id = ? AND role = ?", teamID, entity.RoleCaptain).
			Update("role", entity.RolePlayer).Error; err != nil {
			return err
		}
		res := tx.Model(&entity.TeamMember{}).
			Where("id = ? AND team_id = ?", memberID, teamID).
			Update("role", entity.RoleCaptain)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

// UnsetCaptain снимает капитана команды
func (r *MemberRepo) UnsetCaptain(teamID uint) error {
	return r.db.Model(&entity.TeamMember{}).
		Where("team_id = ? AND role = ?", teamID, entity.RoleCaptain).
		Update("role", entity.RolePlayer).Error
}

// Move переводит членство в другую команду с указанной ролью
func (r *MemberRepo) Move(memberID, destTeamID uint, role string) error {
	res := r.db.Model(&entity.TeamMember{}).
		Where("id = ?", memberID).
		Updates(map[string]interface{}{"team_id": destTeamID, "role": role})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

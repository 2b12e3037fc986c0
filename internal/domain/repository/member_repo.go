package repository

import (
	"github.com/yourusername/quest-api/internal/domain/entity"
)

// MemberRepository определяет методы для работы с членствами в командах
type MemberRepository interface {
	Create(member *entity.TeamMember) error
	GetByUserID(userID uint) (*entity.TeamMember, error)
	GetCaptain(teamID uint) (*entity.TeamMember, error)

	// ListByTeam возвращает состав команды по возрастанию id членства
	// (порядок вступления) с предзагруженными пользователями.
	ListByTeam(teamID uint) ([]entity.TeamMember, error)
	CountByTeam(teamID uint) (int64, error)

	// SetCaptain снимает текущего капитана и назначает нового одной
	// логической операцией — инвариант «не более одного капитана».
	SetCaptain(teamID, memberID uint) error
	UnsetCaptain(teamID uint) error

	// Move переводит членство в другую команду с указанной ролью.
	Move(memberID, destTeamID uint, role string) error
}

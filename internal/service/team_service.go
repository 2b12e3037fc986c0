package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/quest-api/internal/domain/entity"
	"github.com/yourusername/quest-api/internal/domain/repository"
	apperrors "github.com/yourusername/quest-api/internal/pkg/errors"
)

// MemberInfo — участник в составе команды.
type MemberInfo struct {
	UserID    uint   `json:"user_id"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	TgID      string `json:"tg_id"`
}

// TeamRoster — команда с составом.
type TeamRoster struct {
	TeamID    uint         `json:"team_id"`
	TeamName  string       `json:"team_name"`
	IsLocked  bool         `json:"is_locked"`
	CanRename bool         `json:"can_rename"`
	RouteID   *uint        `json:"route_id"`
	Captain   *MemberInfo  `json:"captain"`
	Members   []MemberInfo `json:"members"`
}

// TeamService отвечает за составы команд и административные операции
// над ними.
type TeamService struct {
	teamRepo   repository.TeamRepository
	memberRepo repository.MemberRepository
	userRepo   repository.UserRepository
	teamSize   int
}

// NewTeamService создает новый сервис команд
func NewTeamService(
	teamRepo repository.TeamRepository,
	memberRepo repository.MemberRepository,
	userRepo repository.UserRepository,
	teamSize int,
) *TeamService {
	return &TeamService{
		teamRepo:   teamRepo,
		memberRepo: memberRepo,
		userRepo:   userRepo,
		teamSize:   teamSize,
	}
}

// memberByTg возвращает участника и его членство по telegram id
func (s *TeamService) memberByTg(tgID string) (*entity.User, *entity.TeamMember, error) {
	user, err := s.userRepo.GetByTgID(tgID)
	if err != nil {
		return nil, nil, err
	}
	member, err := s.memberRepo.GetByUserID(user.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: user has no team", apperrors.ErrConflict)
		}
		return nil, nil, err
	}
	return user, member, nil
}

// TeamByTg возвращает команду участника по telegram id
func (s *TeamService) TeamByTg(tgID string) (*entity.Team, *entity.TeamMember, error) {
	_, member, err := s.memberByTg(tgID)
	if err != nil {
		return nil, nil, err
	}
	team, err := s.teamRepo.GetByID(member.TeamID)
	if err != nil {
		return nil, nil, err
	}
	return team, member, nil
}

// Roster возвращает команду с составом в порядке вступления
func (s *TeamService) Roster(teamID uint) (*TeamRoster, error) {
	team, err := s.teamRepo.GetByID(teamID)
	if err != nil {
		return nil, err
	}
	members, err := s.memberRepo.ListByTeam(teamID)
	if err != nil {
		return nil, err
	}

	roster := &TeamRoster{
		TeamID:    team.ID,
		TeamName:  team.Name,
		IsLocked:  team.IsLocked,
		CanRename: team.CanRename,
		RouteID:   team.RouteID,
		Members:   make([]MemberInfo, 0, len(members)),
	}
	for i := range members {
		m := &members[i]
		info := MemberInfo{
			UserID: m.UserID,
			Role:   m.Role,
		}
		if m.User != nil {
			info.FirstName = m.User.FirstName
			info.LastName = m.User.LastName
			info.Phone = m.User.Phone
			info.TgID = m.User.TgID
		}
		roster.Members = append(roster.Members, info)
		if m.IsCaptain() {
			cap := info
			roster.Captain = &cap
		}
	}
	return roster, nil
}

// RosterByTg возвращает состав команды участника
func (s *TeamService) RosterByTg(tgID string) (*TeamRoster, error) {
	_, member, err := s.memberByTg(tgID)
	if err != nil {
		return nil, err
	}
	return s.Roster(member.TeamID)
}

// ListRosters возвращает все команды с составами (админский список)
func (s *TeamService) ListRosters() ([]TeamRoster, error) {
	teams, err := s.teamRepo.List()
	if err != nil {
		return nil, err
	}
	rosters := make([]TeamRoster, 0, len(teams))
	for i := range teams {
		roster, err := s.Roster(teams[i].ID)
		if err != nil {
			return nil, err
		}
		rosters = append(rosters, *roster)
	}
	return rosters, nil
}

// Rename одноразово переименовывает команду. Разрешено только капитану,
// только когда команда полная, до старта и пока право не использовано.
func (s *TeamService) Rename(tgID, newName string) (*entity.Team, error) {
	_, member, err := s.memberByTg(tgID)
	if err != nil {
		return nil, err
	}
	if !member.IsCaptain() {
		return nil, fmt.Errorf("%w: only captain can rename", apperrors.ErrForbidden)
	}

	team, err := s.teamRepo.GetByID(member.TeamID)
	if err != nil {
		return nil, err
	}

	count, err := s.memberRepo.CountByTeam(team.ID)
	if err != nil {
		return nil, err
	}
	if count < int64(s.teamSize) {
		return nil, fmt.Errorf("%w: team is not full yet", apperrors.ErrConflict)
	}
	if team.StartedAt != nil {
		return nil, fmt.Errorf("%w: team already started", apperrors.ErrConflict)
	}
	if !team.CanRename {
		return nil, fmt.Errorf("%w: rename already used", apperrors.ErrConflict)
	}

	newName = strings.TrimSpace(newName)
	if len([]rune(newName)) < 2 {
		return nil, fmt.Errorf("%w: new name is too short", apperrors.ErrValidation)
	}
	existing, err := s.teamRepo.GetByName(newName)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.ID != team.ID {
		return nil, fmt.Errorf("%w: team name already exists", apperrors.ErrConflict)
	}

	ok, err := s.teamRepo.UseRename(team.ID, newName)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Гонка: право успели использовать между чтением и записью
		return nil, fmt.Errorf("%w: rename already used", apperrors.ErrConflict)
	}

	log.Printf("[TeamService] Команда %d переименована: %q -> %q", team.ID, team.Name, newName)
	return s.teamRepo.GetByID(team.ID)
}

// SetLockedAll открывает или закрывает набор во все команды
func (s *TeamService) SetLockedAll(locked bool) error {
	if err := s.teamRepo.SetLockedAll(locked); err != nil {
		return err
	}
	log.Printf("[TeamService] Набор в команды: locked=%t", locked)
	return nil
}

// SetCaptain назначает капитаном указанного участника команды
func (s *TeamService) SetCaptain(teamID, userID uint) error {
	member, err := s.memberRepo.GetByUserID(userID)
	if err != nil {
		return err
	}
	if member.TeamID != teamID {
		return fmt.Errorf("%w: user is not a member of this team", apperrors.ErrConflict)
	}
	if err := s.memberRepo.SetCaptain(teamID, member.ID); err != nil {
		return err
	}
	log.Printf("[TeamService] Капитан команды %d: участник %d", teamID, userID)
	return nil
}

// UnsetCaptain снимает капитана команды
func (s *TeamService) UnsetCaptain(teamID uint) error {
	return s.memberRepo.UnsetCaptain(teamID)
}

// MoveMember переводит участника в другую команду рядовым игроком.
// Если он был капитаном, прежняя команда остается без капитана.
func (s *TeamService) MoveMember(userID, destTeamID uint) error {
	member, err := s.memberRepo.GetByUserID(userID)
	if err != nil {
		return err
	}
	if member.TeamID == destTeamID {
		return fmt.Errorf("%w: user is already in this team", apperrors.ErrConflict)
	}
	if _, err := s.teamRepo.GetByID(destTeamID); err != nil {
		return err
	}
	count, err := s.memberRepo.CountByTeam(destTeamID)
	if err != nil {
		return err
	}
	if count >= int64(s.teamSize) {
		return fmt.Errorf("%w: destination team is full", apperrors.ErrConflict)
	}
	if err := s.memberRepo.Move(member.ID, destTeamID, entity.RolePlayer); err != nil {
		return err
	}
	log.Printf("[TeamService] Участник %d переведен из команды %d в %d", userID, member.TeamID, destTeamID)
	return nil
}

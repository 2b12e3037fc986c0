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

// RouteService отвечает за справочник маршрутов и балансировку
// назначения маршрутов командам.
type RouteService struct {
	routeRepo repository.RouteRepository
	teamRepo  repository.TeamRepository
}

// NewRouteService создает новый сервис маршрутов
func NewRouteService(routeRepo repository.RouteRepository, teamRepo repository.TeamRepository) *RouteService {
	return &RouteService{routeRepo: routeRepo, teamRepo: teamRepo}
}

// CreateRoute создает маршрут с уникальным кодом
func (s *RouteService) CreateRoute(code, title string) (*entity.Route, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: route code is required", apperrors.ErrValidation)
	}
	_, err := s.routeRepo.GetByCode(code)
	if err == nil {
		return nil, fmt.Errorf("%w: route code already exists", apperrors.ErrConflict)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	route := &entity.Route{Code: code, Title: strings.TrimSpace(title)}
	if err := s.routeRepo.Create(route); err != nil {
		return nil, err
	}
	return route, nil
}

// UpdateRoute обновляет название маршрута
func (s *RouteService) UpdateRoute(id uint, title string) (*entity.Route, error) {
	route, err := s.routeRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	route.Title = strings.TrimSpace(title)
	if err := s.routeRepo.Update(route); err != nil {
		return nil, err
	}
	return route, nil
}

// DeleteRoute удаляет маршрут. Маршрут с назначенными командами
// удалить нельзя.
func (s *RouteService) DeleteRoute(id uint) error {
	count, err := s.teamRepo.CountByRoute(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: route has assigned teams", apperrors.ErrConflict)
	}
	return s.routeRepo.Delete(id)
}

// GetRoute возвращает маршрут с чекпойнтами
func (s *RouteService) GetRoute(id uint) (*entity.Route, error) {
	return s.routeRepo.GetByID(id)
}

// ListRoutes возвращает все маршруты
func (s *RouteService) ListRoutes() ([]entity.Route, error) {
	return s.routeRepo.List()
}

// AddCheckpoint добавляет чекпойнт в хвост маршрута. Позиции идут
// подряд начиная с 1, поэтому новый чекпойнт всегда получает seq
// count+1 — дыры в нумерации невозможны.
func (s *RouteService) AddCheckpoint(routeID uint, title, riddle, photoHint string) (*entity.Checkpoint, error) {
	if _, err := s.routeRepo.GetByID(routeID); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" || strings.TrimSpace(riddle) == "" {
		return nil, fmt.Errorf("%w: checkpoint title and riddle are required", apperrors.ErrValidation)
	}

	count, err := s.routeRepo.CountCheckpoints(routeID)
	if err != nil {
		return nil, err
	}
	cp := &entity.Checkpoint{
		RouteID:   routeID,
		Seq:       int(count) + 1,
		Title:     title,
		Riddle:    riddle,
		PhotoHint: photoHint,
	}
	if err := s.routeRepo.CreateCheckpoint(cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// UpdateCheckpoint обновляет содержимое чекпойнта (позиция неизменна)
func (s *RouteService) UpdateCheckpoint(id uint, title, riddle, photoHint string) (*entity.Checkpoint, error) {
	cp, err := s.routeRepo.GetCheckpointByID(id)
	if err != nil {
		return nil, err
	}
	if title = strings.TrimSpace(title); title != "" {
		cp.Title = title
	}
	if riddle = strings.TrimSpace(riddle); riddle != "" {
		cp.Riddle = riddle
	}
	cp.PhotoHint = photoHint
	if err := s.routeRepo.UpdateCheckpoint(cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// RemoveCheckpoint удаляет последний чекпойнт маршрута. Удалять можно
// только с хвоста, чтобы нумерация осталась сплошной.
func (s *RouteService) RemoveCheckpoint(id uint) error {
	cp, err := s.routeRepo.GetCheckpointByID(id)
	if err != nil {
		return err
	}
	count, err := s.routeRepo.CountCheckpoints(cp.RouteID)
	if err != nil {
		return err
	}
	if int64(cp.Seq) != count {
		return fmt.Errorf("%w: only the last checkpoint can be removed", apperrors.ErrConflict)
	}
	return s.routeRepo.DeleteCheckpoint(id)
}

// AssignBalanced назначает команде маршрут с наименьшим числом уже
// назначенных команд; при равенстве — маршрут с меньшим id. Назначение
// одноразовое: если маршрут уже есть, возвращается он же.
func (s *RouteService) AssignBalanced(teamID uint) (*entity.Route, error) {
	team, err := s.teamRepo.GetByID(teamID)
	if err != nil {
		return nil, err
	}
	if team.RouteID != nil {
		return s.routeRepo.GetByID(*team.RouteID)
	}

	routes, err := s.routeRepo.ListEligible()
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("%w: no eligible routes", apperrors.ErrConflict)
	}

	var best *entity.Route
	var bestCount int64
	for i := range routes {
		count, err := s.teamRepo.CountByRoute(routes[i].ID)
		if err != nil {
			return nil, err
		}
		// routes упорядочены по id, поэтому строгое «меньше»
		// дает tie-break в пользу меньшего id
		if best == nil || count < bestCount {
			best = &routes[i]
			bestCount = count
		}
	}

	ok, err := s.teamRepo.AssignRoute(teamID, best.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Гонка: маршрут назначили параллельно — вернем фактический
		team, err = s.teamRepo.GetByID(teamID)
		if err != nil {
			return nil, err
		}
		if team.RouteID == nil {
			return nil, fmt.Errorf("route assignment failed for team %d", teamID)
		}
		return s.routeRepo.GetByID(*team.RouteID)
	}

	log.Printf("[RouteService] Команде %d назначен маршрут %d (%s)", teamID, best.ID, best.Code)
	return best, nil
}

// AssignSpecific назначает команде конкретный маршрут (админская операция)
func (s *RouteService) AssignSpecific(teamID, routeID uint) (*entity.Route, error) {
	route, err := s.routeRepo.GetByID(routeID)
	if err != nil {
		return nil, err
	}
	if !route.IsEligible() {
		return nil, fmt.Errorf("%w: route has no checkpoints", apperrors.ErrConflict)
	}
	ok, err := s.teamRepo.AssignRoute(teamID, routeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: team already has a route", apperrors.ErrConflict)
	}
	log.Printf("[RouteService] Команде %d вручную назначен маршрут %d (%s)", teamID, route.ID, route.Code)
	return route, nil
}

package service

import (
	"fmt"
	"log"
	"time"

	"github.com/yourusername/quest-api/internal/domain/repository"
	apperrors "github.com/yourusername/quest-api/internal/pkg/errors"
)

// WatcherStarter запускает фоновое наблюдение за прогрессом команды.
// Реализуется вотчер-менеджером; сервису важен только запуск.
type WatcherStarter interface {
	Watch(teamID uint)
}

// StartResult — итог старта квеста.
type StartResult struct {
	TeamID         uint       `json:"team_id"`
	TeamName       string     `json:"team_name"`
	StartedAt      *time.Time `json:"started_at"`
	AlreadyStarted bool       `json:"already_started"`
}

// CheckpointView — текущий чекпойнт команды для выдачи наружу.
// Загадка показывается, ответ на расположение — нет.
type CheckpointView struct {
	Seq       int    `json:"seq"`
	Title     string `json:"title"`
	Riddle    string `json:"riddle"`
	PhotoHint string `json:"photo_hint"`
}

// TeamSummary — сводка прохождения для команды.
type TeamSummary struct {
	TeamID     uint            `json:"team_id"`
	TeamName   string          `json:"team_name"`
	State      string          `json:"state"`
	RouteID    *uint           `json:"route_id"`
	Done       int             `json:"done"`
	Total      int             `json:"total"`
	StartedAt  *time.Time      `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at"`
	Current    *CheckpointView `json:"current_checkpoint"`
}

// GameService управляет жизненным циклом прохождения: старт капитаном,
// текущий чекпойнт, сводка и сброс.
type GameService struct {
	teamRepo   repository.TeamRepository
	memberRepo repository.MemberRepository
	userRepo   repository.UserRepository
	routeRepo  repository.RouteRepository
	proofRepo  repository.ProofRepository
	routeSvc   *RouteService
	watcher    WatcherStarter
	teamSize   int
}

// NewGameService создает новый игровой сервис
func NewGameService(
	teamRepo repository.TeamRepository,
	memberRepo repository.MemberRepository,
	userRepo repository.UserRepository,
	routeRepo repository.RouteRepository,
	proofRepo repository.ProofRepository,
	routeSvc *RouteService,
	watcher WatcherStarter,
	teamSize int,
) *GameService {
	return &GameService{
		teamRepo:   teamRepo,
		memberRepo: memberRepo,
		userRepo:   userRepo,
		routeRepo:  routeRepo,
		proofRepo:  proofRepo,
		routeSvc:   routeSvc,
		watcher:    watcher,
		teamSize:   teamSize,
	}
}

// Start запускает прохождение квеста. Только капитан, только полная
// команда с назначенным маршрутом и выбранным именем. Повторный вызов
// идемпотентен.
func (s *GameService) Start(tgID string) (*StartResult, error) {
	user, err := s.userRepo.GetByTgID(tgID)
	if err != nil {
		return nil, err
	}
	member, err := s.memberRepo.GetByUserID(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: user has no team", apperrors.ErrConflict)
	}
	if !member.IsCaptain() {
		return nil, fmt.Errorf("%w: only captain can start", apperrors.ErrForbidden)
	}

	team, err := s.teamRepo.GetByID(member.TeamID)
	if err != nil {
		return nil, err
	}
	if team.StartedAt != nil {
		return &StartResult{
			TeamID:         team.ID,
			TeamName:       team.Name,
			StartedAt:      team.StartedAt,
			AlreadyStarted: true,
		}, nil
	}

	count, err := s.memberRepo.CountByTeam(team.ID)
	if err != nil {
		return nil, err
	}
	if count < int64(s.teamSize) {
		return nil, fmt.Errorf("%w: team is not full yet", apperrors.ErrConflict)
	}

	// Старт требует выбранного имени: либо имя уже не сгенерированное,
	// либо право на переименование осознанно потрачено
	if team.HasDefaultName() && team.CanRename {
		return nil, fmt.Errorf("%w: set custom team name first", apperrors.ErrConflict)
	}

	// Маршрут должен быть назначен; если балансировщик еще не отработал —
	// назначаем прямо сейчас
	if team.RouteID == nil {
		if _, err := s.routeSvc.AssignBalanced(team.ID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	ok, err := s.teamRepo.MarkStarted(team.ID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Гонка: стартовали параллельно — вернем фактическое состояние
		team, err = s.teamRepo.GetByID(team.ID)
		if err != nil {
			return nil, err
		}
		return &StartResult{
			TeamID:         team.ID,
			TeamName:       team.Name,
			StartedAt:      team.StartedAt,
			AlreadyStarted: true,
		}, nil
	}

	log.Printf("[GameService] Команда %d (%s) стартовала", team.ID, team.Name)
	if s.watcher != nil {
		s.watcher.Watch(team.ID)
	}

	return &StartResult{
		TeamID:    team.ID,
		TeamName:  team.Name,
		StartedAt: &now,
	}, nil
}

// CurrentCheckpoint возвращает текущий чекпойнт команды.
// Для нестартовавшей или финишировавшей команды чекпойнта нет.
func (s *GameService) CurrentCheckpoint(teamID uint) (*CheckpointView, error) {
	team, err := s.teamRepo.GetByID(teamID)
	if err != nil {
		return nil, err
	}
	progress := team.Progress()
	if !progress.IsStarted() {
		return nil, fmt.Errorf("%w: team is not on a checkpoint", apperrors.ErrConflict)
	}
	if team.RouteID == nil {
		return nil, fmt.Errorf("%w: team has no route", apperrors.ErrConflict)
	}
	cp, err := s.routeRepo.GetCheckpointBySeq(*team.RouteID, progress.Seq)
	if err != nil {
		return nil, err
	}
	return &CheckpointView{
		Seq:       cp.Seq,
		Title:     cp.Title,
		Riddle:    cp.Riddle,
		PhotoHint: cp.PhotoHint,
	}, nil
}

// Summary возвращает сводку прохождения команды
func (s *GameService) Summary(teamID uint) (*TeamSummary, error) {
	team, err := s.teamRepo.GetByID(teamID)
	if err != nil {
		return nil, err
	}

	summary := &TeamSummary{
		TeamID:     team.ID,
		TeamName:   team.Name,
		State:      team.Progress().State,
		RouteID:    team.RouteID,
		StartedAt:  team.StartedAt,
		FinishedAt: team.FinishedAt,
	}

	done, err := s.proofRepo.CountApproved(team.ID)
	if err != nil {
		return nil, err
	}
	summary.Done = int(done)

	if team.RouteID != nil {
		total, err := s.routeRepo.CountCheckpoints(*team.RouteID)
		if err != nil {
			return nil, err
		}
		summary.Total = int(total)
	}

	if team.Progress().IsStarted() {
		cp, err := s.CurrentCheckpoint(team.ID)
		if err == nil {
			summary.Current = cp
		}
	}
	return summary, nil
}

// ResetProgress сбрасывает игровой прогресс всех команд: пруфы,
// отметки старта/финиша и текущие чекпойнты. Составы и маршруты
// сохраняются. Вотчеры заметят сброс и остановятся сами.
func (s *GameService) ResetProgress() error {
	if err := s.proofRepo.DeleteAll(); err != nil {
		return err
	}
	if err := s.teamRepo.ResetProgressAll(); err != nil {
		return err
	}
	log.Printf("[GameService] Игровой прогресс сброшен")
	return nil
}

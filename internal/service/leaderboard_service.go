package service

import (
	"errors"
	"log"
	"sort"
	"time"

	"github.com/yourusername/quest-api/internal/domain/entity"
	"github.com/yourusername/quest-api/internal/domain/repository"
	apperrors "github.com/yourusername/quest-api/internal/pkg/errors"
)

const leaderboardCacheKey = "leaderboard:snapshot"

// LeaderboardRow — позиция команды в таблице лидеров.
type LeaderboardRow struct {
	Rank       int        `json:"rank"`
	TeamID     uint       `json:"team_id"`
	TeamName   string     `json:"team_name"`
	State      string     `json:"state"`
	Done       int        `json:"done"`
	Total      int        `json:"total"`
	ElapsedSec int64      `json:"elapsed_sec"`
	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

// LeaderboardService строит таблицу лидеров. Порядок трехъярусный:
// сначала финишировавшие по возрастанию времени прохождения, затем
// идущие по маршруту по убыванию зачтенных чекпойнтов, затем не
// стартовавшие по id команды.
type LeaderboardService struct {
	teamRepo  repository.TeamRepository
	proofRepo repository.ProofRepository
	routeRepo repository.RouteRepository
	cacheRepo repository.CacheRepository
	cacheTTL  time.Duration
}

// NewLeaderboardService создает новый сервис таблицы лидеров
func NewLeaderboardService(
	teamRepo repository.TeamRepository,
	proofRepo repository.ProofRepository,
	routeRepo repository.RouteRepository,
	cacheRepo repository.CacheRepository,
	cacheTTL time.Duration,
) *LeaderboardService {
	return &LeaderboardService{
		teamRepo:  teamRepo,
		proofRepo: proofRepo,
		routeRepo: routeRepo,
		cacheRepo: cacheRepo,
		cacheTTL:  cacheTTL,
	}
}

// Build строит таблицу лидеров из хранилища
func (s *LeaderboardService) Build() ([]LeaderboardRow, error) {
	teams, err := s.teamRepo.List()
	if err != nil {
		return nil, err
	}

	rows := make([]LeaderboardRow, 0, len(teams))
	for i := range teams {
		row, err := s.buildRow(&teams[i])
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	SortLeaderboard(rows)
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}

func (s *LeaderboardService) buildRow(team *entity.Team) (LeaderboardRow, error) {
	row := LeaderboardRow{
		TeamID:     team.ID,
		TeamName:   team.Name,
		State:      team.Progress().State,
		StartedAt:  team.StartedAt,
		FinishedAt: team.FinishedAt,
	}

	done, err := s.proofRepo.CountApproved(team.ID)
	if err != nil {
		return row, err
	}
	row.Done = int(done)

	if team.RouteID != nil {
		total, err := s.routeRepo.CountCheckpoints(*team.RouteID)
		if err != nil {
			return row, err
		}
		row.Total = int(total)
	}

	// Для стартовавших, но не финишировавших команд время идет до сих пор
	if team.StartedAt != nil {
		end := time.Now()
		if team.FinishedAt != nil {
			end = *team.FinishedAt
		}
		row.ElapsedSec = int64(end.Sub(*team.StartedAt).Seconds())
	}
	return row, nil
}

// SortLeaderboard упорядочивает строки по трем ярусам.
// Вынесено отдельно, чтобы компаратор было видно целиком.
func SortLeaderboard(rows []LeaderboardRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		ta, tb := tier(a), tier(b)
		if ta != tb {
			return ta < tb
		}
		switch ta {
		case 0: // финишировавшие: быстрее — выше
			if a.ElapsedSec != b.ElapsedSec {
				return a.ElapsedSec < b.ElapsedSec
			}
		case 1: // в пути: больше зачтено — выше
			if a.Done != b.Done {
				return a.Done > b.Done
			}
		}
		return a.TeamID < b.TeamID
	})
}

func tier(r LeaderboardRow) int {
	switch r.State {
	case entity.StateFinished:
		return 0
	case entity.StateInProgress:
		return 1
	default:
		return 2
	}
}

// Snapshot возвращает таблицу лидеров, переиспользуя короткоживущий
// кеш в Redis. Хранилище остается источником истины: кеш — только
// оптимизация самого горячего чтения.
func (s *LeaderboardService) Snapshot() ([]LeaderboardRow, error) {
	if s.cacheRepo != nil {
		var cached []LeaderboardRow
		err := s.cacheRepo.GetJSON(leaderboardCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[LeaderboardService] Ошибка чтения кеша: %v", err)
		}
	}

	rows, err := s.Build()
	if err != nil {
		return nil, err
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(leaderboardCacheKey, rows, s.cacheTTL); err != nil {
			log.Printf("[LeaderboardService] Ошибка записи кеша: %v", err)
		}
	}
	return rows, nil
}

// Invalidate сбрасывает кешированный снапшот (после сброса прогресса)
func (s *LeaderboardService) Invalidate() {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Delete(leaderboardCacheKey); err != nil {
		log.Printf("[LeaderboardService] Ошибка инвалидации кеша: %v", err)
	}
}

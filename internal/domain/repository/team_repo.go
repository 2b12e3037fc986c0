package repository

import (
	"time"

	"github.com/yourusername/quest-api/internal/domain/entity"
)

// TeamRepository определяет методы для работы с командами.
// Методы-переходы (UseRename, MarkStarted, AdvanceCheckpoint, MarkFinished,
// AssignRoute) выполняют compare-and-set: возвращают false, если условие
// перехода уже не выполняется. Так двойные запросы схлопываются в один
// эффективный переход без блокировок.
type TeamRepository interface {
	Create(team *entity.Team) error
	GetByID(id uint) (*entity.Team, error)
	GetByName(name string) (*entity.Team, error)
	List() ([]entity.Team, error)
	ListByRoute(routeID uint) ([]entity.Team, error)
	ListStartedUnfinished() ([]entity.Team, error)
	ListUnlocked() ([]entity.Team, error)
	Count() (int64, error)
	CountByRoute(routeID uint) (int64, error)
	Update(team *entity.Team) error
	SetLockedAll(locked bool) error

	// UseRename одноразово переименовывает команду: срабатывает только
	// пока право на переименование не использовано.
	UseRename(teamID uint, name string) (bool, error)

	// AssignRoute назначает маршрут, только если он ещё не назначен.
	AssignRoute(teamID, routeID uint) (bool, error)

	// MarkStarted выставляет started_at, только если команда не стартовала.
	MarkStarted(teamID uint, at time.Time) (bool, error)

	// AdvanceCheckpoint переводит current_seq из fromSeq в toSeq.
	AdvanceCheckpoint(teamID uint, fromSeq, toSeq int) (bool, error)

	// MarkFinished выставляет finished_at ровно один раз.
	MarkFinished(teamID uint, at time.Time) (bool, error)

	// ResetProgressAll сбрасывает игровой прогресс всех команд:
	// старт, финиш и текущий чекпойнт. Составы и маршруты не трогаем.
	ResetProgressAll() error
}

package watcher

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/yourusername/quest-api/internal/domain/entity"
	"github.com/yourusername/quest-api/internal/domain/repository"
	"github.com/yourusername/quest-api/internal/notifier"
)

const (
	// maxBackoffFactor ограничивает экспоненциальный откат при ошибках
	// чтения: задержка не превышает poll * maxBackoffFactor.
	maxBackoffFactor = 8

	finishMessage = "🏁 Поздравляем! Ваша команда прошла весь маршрут!"
)

// Manager следит за прогрессом стартовавших команд и рассылает участникам
// задание текущего чекпойнта. На команду — не более одного вотчера;
// повторный запуск отменяет предыдущий.
type Manager struct {
	teamRepo   repository.TeamRepository
	memberRepo repository.MemberRepository
	routeRepo  repository.RouteRepository
	notify     notifier.Notifier

	pollInterval time.Duration
	appCtx       context.Context

	// teamID -> *handle
	cancels sync.Map
	wg      sync.WaitGroup
}

// handle — обертка над cancel, чтобы запись в карте была сравнимой:
// завершающийся вотчер удаляет только собственную запись.
type handle struct {
	cancel context.CancelFunc
}

// NewManager создает вотчер-менеджер
func NewManager(
	appCtx context.Context,
	teamRepo repository.TeamRepository,
	memberRepo repository.MemberRepository,
	routeRepo repository.RouteRepository,
	notify notifier.Notifier,
	pollInterval time.Duration,
) *Manager {
	return &Manager{
		teamRepo:     teamRepo,
		memberRepo:   memberRepo,
		routeRepo:    routeRepo,
		notify:       notify,
		pollInterval: pollInterval,
		appCtx:       appCtx,
	}
}

// Watch запускает наблюдение за командой, отменив предыдущий вотчер,
// если он был.
func (m *Manager) Watch(teamID uint) {
	m.Stop(teamID)

	ctx, cancel := context.WithCancel(m.appCtx)
	h := &handle{cancel: cancel}
	m.cancels.Store(teamID, h)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.clear(teamID, h)
		m.loop(ctx, teamID)
	}()

	log.Printf("[Watcher] Запущен вотчер команды %d", teamID)
}

// Running проверяет, работает ли вотчер команды
func (m *Manager) Running(teamID uint) bool {
	_, ok := m.cancels.Load(teamID)
	return ok
}

// Stop отменяет вотчер команды, если он запущен
func (m *Manager) Stop(teamID uint) {
	if v, ok := m.cancels.Load(teamID); ok {
		v.(*handle).cancel()
	}
}

// StopAll отменяет все вотчеры и дожидается их завершения
func (m *Manager) StopAll() {
	m.cancels.Range(func(key, value interface{}) bool {
		value.(*handle).cancel()
		return true
	})
	m.wg.Wait()
	log.Printf("[Watcher] Все вотчеры остановлены")
}

// Resume перезапускает вотчеры всех стартовавших и не финишировавших
// команд. Вызывается один раз при старте приложения.
func (m *Manager) Resume() error {
	teams, err := m.teamRepo.ListStartedUnfinished()
	if err != nil {
		return fmt.Errorf("failed to list teams for watcher resume: %w", err)
	}
	for i := range teams {
		m.Watch(teams[i].ID)
	}
	log.Printf("[Watcher] Возобновлено вотчеров: %d", len(teams))
	return nil
}

// clear удаляет запись вотчера, только если она все еще наша:
// Watch мог уже заменить ее новой.
func (m *Manager) clear(teamID uint, h *handle) {
	h.cancel()
	if v, ok := m.cancels.Load(teamID); ok && v == interface{}(h) {
		m.cancels.Delete(teamID)
	}
}

// loop — цикл одного вотчера. Держит только локальный lastSeq;
// источником истины остается хранилище. Ошибки чтения не всплывают:
// задержка между попытками растет экспоненциально до предела.
func (m *Manager) loop(ctx context.Context, teamID uint) {
	lastSeq := -1
	delay := m.pollInterval

	// Первая проверка сразу: если команда уже на чекпойнте — шлем задание
	if done := m.check(teamID, &lastSeq, &delay); done {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		if done := m.check(teamID, &lastSeq, &delay); done {
			return
		}
	}
}

// check выполняет один опрос прогресса. Возвращает true, когда вотчеру
// пора завершиться.
func (m *Manager) check(teamID uint, lastSeq *int, delay *time.Duration) bool {
	team, err := m.teamRepo.GetByID(teamID)
	if err != nil {
		m.backoff(delay)
		log.Printf("[Watcher] Команда %d: ошибка чтения: %v", teamID, err)
		return false
	}
	*delay = m.pollInterval

	progress := team.Progress()
	switch {
	case progress.IsFinished():
		// Финишное сообщение ровно один раз; завершаемся только после
		// успешной рассылки, иначе поздравление потеряется навсегда
		if err := m.broadcast(teamID, finishMessage); err != nil {
			m.backoff(delay)
			log.Printf("[Watcher] Команда %d: ошибка финишной рассылки: %v", teamID, err)
			return false
		}
		log.Printf("[Watcher] Команда %d финишировала, вотчер завершен", teamID)
		return true

	case !progress.IsStarted():
		// Прогресс сброшен — наблюдать больше не за чем
		log.Printf("[Watcher] Команда %d больше не в игре, вотчер завершен", teamID)
		return true
	}

	if progress.Seq == *lastSeq {
		return false
	}

	// Пропущенные переходы схлопываются: рассылаем только актуальное задание.
	// lastSeq сдвигается только после успешной рассылки — неудавшаяся
	// попытка повторится на следующем опросе.
	if err := m.sendCheckpoint(team, progress.Seq); err != nil {
		m.backoff(delay)
		log.Printf("[Watcher] Команда %d: ошибка отправки задания: %v", teamID, err)
		return false
	}
	*lastSeq = progress.Seq
	return false
}

func (m *Manager) backoff(delay *time.Duration) {
	next := *delay * 2
	if max := m.pollInterval * maxBackoffFactor; next > max {
		next = max
	}
	*delay = next
}

// sendCheckpoint рассылает составу команды задание чекпойнта seq
func (m *Manager) sendCheckpoint(team *entity.Team, seq int) error {
	if team.RouteID == nil {
		return fmt.Errorf("team %d has no route", team.ID)
	}
	cp, err := m.routeRepo.GetCheckpointBySeq(*team.RouteID, seq)
	if err != nil {
		return err
	}
	total, err := m.routeRepo.CountCheckpoints(*team.RouteID)
	if err != nil {
		return err
	}

	hint := cp.PhotoHint
	if hint == "" {
		hint = "Вся команда + деталь локации."
	}
	text := fmt.Sprintf("Задание %d/%d — %s\n\n%s\n\nРекомендация к фото: %s",
		cp.Seq, total, cp.Title, cp.Riddle, hint)

	return m.broadcast(team.ID, text)
}

// broadcast отправляет текст всем участникам команды с реальным
// telegram id. Ошибка чтения состава поднимается наверх, чтобы вызвавший
// повторил рассылку; ошибки доставки отдельным участникам глотает
// нотификатор.
func (m *Manager) broadcast(teamID uint, text string) error {
	members, err := m.memberRepo.ListByTeam(teamID)
	if err != nil {
		return fmt.Errorf("failed to list team %d members: %w", teamID, err)
	}

	sent := make(map[int64]bool)
	for i := range members {
		user := members[i].User
		if user == nil || user.IsPending() {
			continue
		}
		chatID, err := strconv.ParseInt(user.TgID, 10, 64)
		if err != nil || sent[chatID] {
			continue
		}
		m.notify.SendToChat(chatID, text)
		sent[chatID] = true
	}
	return nil
}

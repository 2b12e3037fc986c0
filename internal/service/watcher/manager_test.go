package watcher

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quest-api/internal/domain/entity"
	"github.com/yourusername/quest-api/internal/domain/repository"
)

// fakeTeamRepo — потокобезопасная заглушка поверх одной команды.
// Неиспользуемые методы интерфейса остаются у вложенного nil и в тестах
// не вызываются.
type fakeTeamRepo struct {
	repository.TeamRepository
	mu   sync.Mutex
	team entity.Team
}

func (f *fakeTeamRepo) GetByID(id uint) (*entity.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	team := f.team
	return &team, nil
}

func (f *fakeTeamRepo) ListStartedUnfinished() ([]entity.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.team.StartedAt != nil && f.team.FinishedAt == nil {
		return []entity.Team{f.team}, nil
	}
	return []entity.Team{}, nil
}

func (f *fakeTeamRepo) set(mutate func(*entity.Team)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mutate(&f.team)
}

type fakeMemberRepo struct {
	repository.MemberRepository
	mu      sync.Mutex
	members []entity.TeamMember
	err     error
}

func (f *fakeMemberRepo) ListByTeam(teamID uint) ([]entity.TeamMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.members, nil
}

func (f *fakeMemberRepo) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type fakeRouteRepo struct {
	repository.RouteRepository
	checkpoints map[int]entity.Checkpoint
}

func (f *fakeRouteRepo) GetCheckpointBySeq(routeID uint, seq int) (*entity.Checkpoint, error) {
	cp := f.checkpoints[seq]
	return &cp, nil
}

func (f *fakeRouteRepo) CountCheckpoints(routeID uint) (int64, error) {
	return int64(len(f.checkpoints)), nil
}

// recordingNotifier складывает отправленные сообщения в канал
type recordingNotifier struct {
	messages chan string
	chats    chan int64
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		messages: make(chan string, 64),
		chats:    make(chan int64, 64),
	}
}

func (n *recordingNotifier) SendToChat(chatID int64, text string) {
	n.chats <- chatID
	n.messages <- text
}

func waitMessage(t *testing.T, n *recordingNotifier) string {
	t.Helper()
	select {
	case msg := <-n.messages:
		<-n.chats
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("Сообщение не пришло за отведенное время")
		return ""
	}
}

func assertNoMessage(t *testing.T, n *recordingNotifier, within time.Duration) {
	t.Helper()
	select {
	case msg := <-n.messages:
		t.Fatalf("Неожиданное сообщение: %q", msg)
	case <-time.After(within):
	}
}

func newTestManager(t *testing.T, teamRepo *fakeTeamRepo, memberRepo *fakeMemberRepo, routeRepo *fakeRouteRepo) (*Manager, *recordingNotifier) {
	t.Helper()
	notify := newRecordingNotifier()
	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager(ctx, teamRepo, memberRepo, routeRepo, notify, 10*time.Millisecond)
	t.Cleanup(func() {
		cancel()
		m.StopAll()
	})
	return m, notify
}

func startedFixture() (*fakeTeamRepo, *fakeMemberRepo, *fakeRouteRepo) {
	routeID := uint(7)
	started := time.Now().Add(-time.Minute)
	teamRepo := &fakeTeamRepo{team: entity.Team{
		ID:         3,
		Name:       "Сапсаны",
		RouteID:    &routeID,
		CurrentSeq: 1,
		StartedAt:  &started,
	}}
	memberRepo := &fakeMemberRepo{members: []entity.TeamMember{
		{ID: 1, TeamID: 3, UserID: 10, Role: entity.RoleCaptain, User: &entity.User{ID: 10, TgID: "100"}},
		{ID: 2, TeamID: 3, UserID: 11, User: &entity.User{ID: 11, TgID: "200"}},
	}}
	routeRepo := &fakeRouteRepo{checkpoints: map[int]entity.Checkpoint{
		1: {ID: 10, RouteID: 7, Seq: 1, Title: "Фонтан", Riddle: "Где вода танцует"},
		2: {ID: 20, RouteID: 7, Seq: 2, Title: "Мост", Riddle: "Соединяет берега", PhotoHint: "Вся команда на мосту"},
	}}
	return teamRepo, memberRepo, routeRepo
}

// ============================================================================
// Тесты жизненного цикла вотчера
// ============================================================================

func TestManager_Watch_SendsTaskOncePerTransition(t *testing.T) {
	// Arrange
	teamRepo, memberRepo, routeRepo := startedFixture()
	m, notify := newTestManager(t, teamRepo, memberRepo, routeRepo)

	// Act
	m.Watch(3)

	// Assert: задание первого чекпойнта приходит обоим участникам сразу
	first := waitMessage(t, notify)
	assert.Contains(t, first, "Задание 1/2", "Первая проверка выполняется немедленно")
	assert.Contains(t, first, "Где вода танцует")
	second := waitMessage(t, notify)
	assert.Equal(t, first, second, "Задание уходит всему составу")

	// Без перехода повторных рассылок нет
	assertNoMessage(t, notify, 100*time.Millisecond)

	// Переход на следующий чекпойнт — ровно одна рассылка
	teamRepo.set(func(team *entity.Team) { team.CurrentSeq = 2 })
	next := waitMessage(t, notify)
	assert.Contains(t, next, "Задание 2/2")
	assert.Contains(t, next, "Вся команда на мосту", "Подсказка чекпойнта попадает в текст")
	waitMessage(t, notify)
	assertNoMessage(t, notify, 100*time.Millisecond)
}

func TestManager_Watch_FinishBroadcastsAndTerminates(t *testing.T) {
	// Arrange
	teamRepo, memberRepo, routeRepo := startedFixture()
	m, notify := newTestManager(t, teamRepo, memberRepo, routeRepo)

	m.Watch(3)
	waitMessage(t, notify)
	waitMessage(t, notify)

	// Act
	now := time.Now()
	teamRepo.set(func(team *entity.Team) { team.FinishedAt = &now })

	// Assert
	finish := waitMessage(t, notify)
	assert.Contains(t, finish, "прошла весь маршрут", "Должно уйти финишное поздравление")
	waitMessage(t, notify)

	require.Eventually(t, func() bool { return !m.Running(3) },
		2*time.Second, 10*time.Millisecond, "После финиша вотчер должен завершиться")
	assertNoMessage(t, notify, 100*time.Millisecond)
}

func TestManager_Watch_FinishRetriesAfterRosterReadFailure(t *testing.T) {
	// Arrange
	teamRepo, memberRepo, routeRepo := startedFixture()
	m, notify := newTestManager(t, teamRepo, memberRepo, routeRepo)

	m.Watch(3)
	waitMessage(t, notify)
	waitMessage(t, notify)

	// Act: к моменту финиша состав временно не читается
	memberRepo.setErr(errors.New("connection refused"))
	now := time.Now()
	teamRepo.set(func(team *entity.Team) { team.FinishedAt = &now })

	// Assert: вотчер не завершается, пока поздравление не доставлено
	assertNoMessage(t, notify, 200*time.Millisecond)
	assert.True(t, m.Running(3), "Вотчер должен пережить сбой чтения состава")

	memberRepo.setErr(nil)
	finish := waitMessage(t, notify)
	assert.Contains(t, finish, "прошла весь маршрут", "Поздравление уходит после восстановления")
	waitMessage(t, notify)
	require.Eventually(t, func() bool { return !m.Running(3) },
		2*time.Second, 10*time.Millisecond, "После доставки вотчер завершается")
}

func TestManager_Watch_ResendsTaskAfterRosterReadFailure(t *testing.T) {
	// Arrange: состав не читается уже при первом опросе
	teamRepo, memberRepo, routeRepo := startedFixture()
	memberRepo.setErr(errors.New("connection refused"))
	m, notify := newTestManager(t, teamRepo, memberRepo, routeRepo)

	// Act
	m.Watch(3)

	// Assert: задание не теряется — после восстановления рассылка повторяется
	assertNoMessage(t, notify, 200*time.Millisecond)
	assert.True(t, m.Running(3))

	memberRepo.setErr(nil)
	msg := waitMessage(t, notify)
	assert.Contains(t, msg, "Задание 1/2", "Задание доходит после восстановления чтения")
	waitMessage(t, notify)
	assertNoMessage(t, notify, 100*time.Millisecond)
}

func TestManager_Watch_TerminatesWhenProgressReset(t *testing.T) {
	// Arrange
	teamRepo, memberRepo, routeRepo := startedFixture()
	m, notify := newTestManager(t, teamRepo, memberRepo, routeRepo)

	m.Watch(3)
	waitMessage(t, notify)
	waitMessage(t, notify)

	// Act: сброс прогресса возвращает команду в ready
	teamRepo.set(func(team *entity.Team) {
		team.StartedAt = nil
		team.CurrentSeq = 0
	})

	// Assert
	require.Eventually(t, func() bool { return !m.Running(3) },
		2*time.Second, 10*time.Millisecond, "После сброса вотчер должен завершиться")
}

func TestManager_Watch_ReplacesPreviousWatcher(t *testing.T) {
	// Arrange
	teamRepo, memberRepo, routeRepo := startedFixture()
	m, notify := newTestManager(t, teamRepo, memberRepo, routeRepo)

	m.Watch(3)
	waitMessage(t, notify)
	waitMessage(t, notify)

	// Act: повторный запуск отменяет предыдущий вотчер и пересылает
	// актуальное задание
	m.Watch(3)

	// Assert: после пересылки дальнейших дублей нет — работает один вотчер
	waitMessage(t, notify)
	waitMessage(t, notify)
	assert.True(t, m.Running(3))
	assertNoMessage(t, notify, 100*time.Millisecond)
}

func TestManager_StopAll(t *testing.T) {
	// Arrange
	teamRepo, memberRepo, routeRepo := startedFixture()
	m, notify := newTestManager(t, teamRepo, memberRepo, routeRepo)

	m.Watch(3)
	waitMessage(t, notify)
	waitMessage(t, notify)

	// Act
	m.StopAll()

	// Assert
	teamRepo.set(func(team *entity.Team) { team.CurrentSeq = 2 })
	assertNoMessage(t, notify, 100*time.Millisecond)
}

func TestManager_Resume_StartsWatchersForStartedTeams(t *testing.T) {
	// Arrange
	teamRepo, memberRepo, routeRepo := startedFixture()
	m, notify := newTestManager(t, teamRepo, memberRepo, routeRepo)

	// Act
	err := m.Resume()

	// Assert
	require.NoError(t, err, "Возобновление вотчеров должно быть успешным")
	assert.True(t, m.Running(3), "Для стартовавшей команды должен подняться вотчер")
	msg := waitMessage(t, notify)
	assert.Contains(t, msg, "Задание 1/2")
}

// ============================================================================
// Тесты рассылки составу
// ============================================================================

func TestManager_Broadcast_SkipsPendingAndDeduplicates(t *testing.T) {
	// Arrange
	teamRepo, _, routeRepo := startedFixture()
	memberRepo := &fakeMemberRepo{members: []entity.TeamMember{
		{ID: 1, TeamID: 3, UserID: 10, User: &entity.User{ID: 10, TgID: "100"}},
		{ID: 2, TeamID: 3, UserID: 11, User: &entity.User{ID: 11, TgID: entity.PendingTgPrefix + "+79990000001"}},
		{ID: 3, TeamID: 3, UserID: 12, User: &entity.User{ID: 12, TgID: "100"}},
		{ID: 4, TeamID: 3, UserID: 13, User: nil},
	}}
	m, notify := newTestManager(t, teamRepo, memberRepo, routeRepo)

	// Act
	err := m.broadcast(3, "тест")

	// Assert: единственная доставка — реальному telegram id без дублей
	require.NoError(t, err)
	msg := waitMessage(t, notify)
	assert.True(t, strings.Contains(msg, "тест"))
	assertNoMessage(t, notify, 100*time.Millisecond)
}

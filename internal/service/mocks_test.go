package service

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/quest-api/internal/domain/entity"
	"github.com/yourusername/quest-api/internal/domain/repository"
)

// ============================================================================
// Общие моки репозиториев для тестов сервисов
// ============================================================================

// MockUserRepo реализует repository.UserRepository
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) GetByTgID(tgID string) (*entity.User, error) {
	args := m.Called(tgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) GetByPhone(phone string) (*entity.User, error) {
	args := m.Called(phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

// MockTeamRepo реализует repository.TeamRepository
type MockTeamRepo struct {
	mock.Mock
}

func (m *MockTeamRepo) Create(team *entity.Team) error {
	args := m.Called(team)
	return args.Error(0)
}

func (m *MockTeamRepo) GetByID(id uint) (*entity.Team, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Team), args.Error(1)
}

func (m *MockTeamRepo) GetByName(name string) (*entity.Team, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Team), args.Error(1)
}

func (m *MockTeamRepo) List() ([]entity.Team, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Team), args.Error(1)
}

func (m *MockTeamRepo) ListByRoute(routeID uint) ([]entity.Team, error) {
	args := m.Called(routeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Team), args.Error(1)
}

func (m *MockTeamRepo) ListStartedUnfinished() ([]entity.Team, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Team), args.Error(1)
}

func (m *MockTeamRepo) ListUnlocked() ([]entity.Team, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Team), args.Error(1)
}

func (m *MockTeamRepo) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTeamRepo) CountByRoute(routeID uint) (int64, error) {
	args := m.Called(routeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTeamRepo) Update(team *entity.Team) error {
	args := m.Called(team)
	return args.Error(0)
}

func (m *MockTeamRepo) SetLockedAll(locked bool) error {
	args := m.Called(locked)
	return args.Error(0)
}

func (m *MockTeamRepo) UseRename(teamID uint, name string) (bool, error) {
	args := m.Called(teamID, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockTeamRepo) AssignRoute(teamID, routeID uint) (bool, error) {
	args := m.Called(teamID, routeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTeamRepo) MarkStarted(teamID uint, at time.Time) (bool, error) {
	args := m.Called(teamID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockTeamRepo) AdvanceCheckpoint(teamID uint, fromSeq, toSeq int) (bool, error) {
	args := m.Called(teamID, fromSeq, toSeq)
	return args.Bool(0), args.Error(1)
}

func (m *MockTeamRepo) MarkFinished(teamID uint, at time.Time) (bool, error) {
	args := m.Called(teamID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockTeamRepo) ResetProgressAll() error {
	args := m.Called()
	return args.Error(0)
}

// MockMemberRepo реализует repository.MemberRepository
type MockMemberRepo struct {
	mock.Mock
}

func (m *MockMemberRepo) Create(member *entity.TeamMember) error {
	args := m.Called(member)
	return args.Error(0)
}

func (m *MockMemberRepo) GetByUserID(userID uint) (*entity.TeamMember, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TeamMember), args.Error(1)
}

func (m *MockMemberRepo) GetCaptain(teamID uint) (*entity.TeamMember, error) {
	args := m.Called(teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TeamMember), args.Error(1)
}

func (m *MockMemberRepo) ListByTeam(teamID uint) ([]entity.TeamMember, error) {
	args := m.Called(teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.TeamMember), args.Error(1)
}

func (m *MockMemberRepo) CountByTeam(teamID uint) (int64, error) {
	args := m.Called(teamID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMemberRepo) SetCaptain(teamID, memberID uint) error {
	args := m.Called(teamID, memberID)
	return args.Error(0)
}

func (m *MockMemberRepo) UnsetCaptain(teamID uint) error {
	args := m.Called(teamID)
	return args.Error(0)
}

func (m *MockMemberRepo) Move(memberID, destTeamID uint, role string) error {
	args := m.Called(memberID, destTeamID, role)
	return args.Error(0)
}

// MockRouteRepo реализует repository.RouteRepository
type MockRouteRepo struct {
	mock.Mock
}

func (m *MockRouteRepo) Create(route *entity.Route) error {
	args := m.Called(route)
	return args.Error(0)
}

func (m *MockRouteRepo) Update(route *entity.Route) error {
	args := m.Called(route)
	return args.Error(0)
}

func (m *MockRouteRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockRouteRepo) GetByID(id uint) (*entity.Route, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Route), args.Error(1)
}

func (m *MockRouteRepo) GetByCode(code string) (*entity.Route, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Route), args.Error(1)
}

func (m *MockRouteRepo) List() ([]entity.Route, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Route), args.Error(1)
}

func (m *MockRouteRepo) ListEligible() ([]entity.Route, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Route), args.Error(1)
}

func (m *MockRouteRepo) CreateCheckpoint(cp *entity.Checkpoint) error {
	args := m.Called(cp)
	return args.Error(0)
}

func (m *MockRouteRepo) UpdateCheckpoint(cp *entity.Checkpoint) error {
	args := m.Called(cp)
	return args.Error(0)
}

func (m *MockRouteRepo) DeleteCheckpoint(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockRouteRepo) GetCheckpointByID(id uint) (*entity.Checkpoint, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Checkpoint), args.Error(1)
}

func (m *MockRouteRepo) GetCheckpointBySeq(routeID uint, seq int) (*entity.Checkpoint, error) {
	args := m.Called(routeID, seq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Checkpoint), args.Error(1)
}

func (m *MockRouteRepo) CountCheckpoints(routeID uint) (int64, error) {
	args := m.Called(routeID)
	return args.Get(0).(int64), args.Error(1)
}

// MockProofRepo реализует repository.ProofRepository
type MockProofRepo struct {
	mock.Mock
}

func (m *MockProofRepo) Create(proof *entity.Proof) error {
	args := m.Called(proof)
	return args.Error(0)
}

func (m *MockProofRepo) GetByID(id uint) (*entity.Proof, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Proof), args.Error(1)
}

func (m *MockProofRepo) GetByTeamAndCheckpoint(teamID, checkpointID uint) (*entity.Proof, error) {
	args := m.Called(teamID, checkpointID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Proof), args.Error(1)
}

func (m *MockProofRepo) Resubmit(proofID uint, fileID string, submittedBy uint) (bool, error) {
	args := m.Called(proofID, fileID, submittedBy)
	return args.Bool(0), args.Error(1)
}

func (m *MockProofRepo) Decide(proofID uint, status, note string, judgedAt time.Time) (bool, error) {
	args := m.Called(proofID, status, note, judgedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockProofRepo) CountApproved(teamID uint) (int64, error) {
	args := m.Called(teamID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProofRepo) ListPending() ([]repository.PendingProofRow, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.PendingProofRow), args.Error(1)
}

func (m *MockProofRepo) DeleteAll() error {
	args := m.Called()
	return args.Error(0)
}

// MockRouteAssigner реализует RouteAssigner
type MockRouteAssigner struct {
	mock.Mock
}

func (m *MockRouteAssigner) AssignBalanced(teamID uint) (*entity.Route, error) {
	args := m.Called(teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Route), args.Error(1)
}

// MockWatcherStarter реализует WatcherStarter
type MockWatcherStarter struct {
	mock.Mock
}

func (m *MockWatcherStarter) Watch(teamID uint) {
	m.Called(teamID)
}

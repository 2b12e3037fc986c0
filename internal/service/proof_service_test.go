package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quest-api/internal/domain/entity"
	apperrors "github.com/yourusername/quest-api/internal/pkg/errors"
)

// createTestProofService создает ProofService с моками
func createTestProofService(
	proofRepo *MockProofRepo,
	teamRepo *MockTeamRepo,
	memberRepo *MockMemberRepo,
	userRepo *MockUserRepo,
	routeRepo *MockRouteRepo,
) *ProofService {
	return NewProofService(proofRepo, teamRepo, memberRepo, userRepo, routeRepo, "testdata/proofs")
}

func startedTeam(id, routeID uint, seq int) *entity.Team {
	started := time.Now().Add(-time.Hour)
	return &entity.Team{
		ID:         id,
		Name:       "Сапсаны",
		RouteID:    &routeID,
		CurrentSeq: seq,
		StartedAt:  &started,
	}
}

// ============================================================================
// Тесты отправки пруфа
// ============================================================================

func TestProofService_Submit_CreatesPendingProof(t *testing.T) {
	// Arrange
	mockProofRepo := new(MockProofRepo)
	mockTeamRepo := new(MockTeamRepo)
	mockMemberRepo := new(MockMemberRepo)
	mockUserRepo := new(MockUserRepo)
	mockRouteRepo := new(MockRouteRepo)
	svc := createTestProofService(mockProofRepo, mockTeamRepo, mockMemberRepo, mockUserRepo, mockRouteRepo)

	mockUserRepo.On("GetByTgID", "100").Return(&entity.User{ID: 10, TgID: "100"}, nil)
	mockMemberRepo.On("GetByUserID", uint(10)).Return(&entity.TeamMember{ID: 1, TeamID: 3, UserID: 10, Role: entity.RoleCaptain}, nil)
	mockTeamRepo.On("GetByID", uint(3)).Return(startedTeam(3, 7, 2), nil)
	mockRouteRepo.On("GetCheckpointBySeq", uint(7), 2).Return(&entity.Checkpoint{ID: 20, RouteID: 7, Seq: 2}, nil)
	mockProofRepo.On("GetByTeamAndCheckpoint", uint(3), uint(20)).Return(nil, apperrors.ErrNotFound)
	mockProofRepo.On("Create", mock.MatchedBy(func(p *entity.Proof) bool {
		return p.TeamID == 3 && p.CheckpointID == 20 && p.Status == entity.ProofStatusPending && p.FileID == "file-1"
	})).Run(func(args mock.Arguments) {
		args.Get(0).(*entity.Proof).ID = 100
	}).Return(nil)

	// Act
	result, err := svc.Submit("100", "file-1")

	// Assert
	require.NoError(t, err, "Отправка пруфа должна быть успешной")
	assert.Equal(t, uint(100), result.ProofID)
	assert.Equal(t, 2, result.CheckpointSeq)
	assert.Equal(t, entity.ProofStatusPending, result.Status)
	assert.False(t, result.Resubmitted)
	mockProofRepo.AssertExpectations(t)
}

func TestProofService_Submit_ResubmitOverwritesAttempt(t *testing.T) {
	// Arrange
	mockProofRepo := new(MockProofRepo)
	mockTeamRepo := new(MockTeamRepo)
	mockMemberRepo := new(MockMemberRepo)
	mockUserRepo := new(MockUserRepo)
	mockRouteRepo := new(MockRouteRepo)
	svc := createTestProofService(mockProofRepo, mockTeamRepo, mockMemberRepo, mockUserRepo, mockRouteRepo)

	mockUserRepo.On("GetByTgID", "100").Return(&entity.User{ID: 10, TgID: "100"}, nil)
	mockMemberRepo.On("GetByUserID", uint(10)).Return(&entity.TeamMember{ID: 1, TeamID: 3, UserID: 10, Role: entity.RoleCaptain}, nil)
	mockTeamRepo.On("GetByID", uint(3)).Return(startedTeam(3, 7, 2), nil)
	mockRouteRepo.On("GetCheckpointBySeq", uint(7), 2).Return(&entity.Checkpoint{ID: 20, RouteID: 7, Seq: 2}, nil)
	mockProofRepo.On("GetByTeamAndCheckpoint", uint(3), uint(20)).Return(&entity.Proof{
		ID: 100, TeamID: 3, CheckpointID: 20, Status: entity.ProofStatusRejected,
	}, nil)
	mockProofRepo.On("Resubmit", uint(100), "file-2", uint(10)).Return(true, nil)

	// Act
	result, err := svc.Submit("100", "file-2")

	// Assert
	require.NoError(t, err, "Переотправка должна быть успешной")
	assert.Equal(t, uint(100), result.ProofID, "Должна перезаписываться та же запись")
	assert.Equal(t, entity.ProofStatusPending, result.Status, "Попытка возвращается в очередь модерации")
	assert.True(t, result.Resubmitted)
	mockProofRepo.AssertNotCalled(t, "Create", mock.Anything)
	mockProofRepo.AssertExpectations(t)
}

func TestProofService_Submit_ApprovedIsImmutable(t *testing.T) {
	// Arrange
	mockProofRepo := new(MockProofRepo)
	mockTeamRepo := new(MockTeamRepo)
	mockMemberRepo := new(MockMemberRepo)
	mockUserRepo := new(MockUserRepo)
	mockRouteRepo := new(MockRouteRepo)
	svc := createTestProofService(mockProofRepo, mockTeamRepo, mockMemberRepo, mockUserRepo, mockRouteRepo)

	mockUserRepo.On("GetByTgID", "100").Return(&entity.User{ID: 10, TgID: "100"}, nil)
	mockMemberRepo.On("GetByUserID", uint(10)).Return(&entity.TeamMember{ID: 1, TeamID: 3, UserID: 10, Role: entity.RoleCaptain}, nil)
	mockTeamRepo.On("GetByID", uint(3)).Return(startedTeam(3, 7, 2), nil)
	mockRouteRepo.On("GetCheckpointBySeq", uint(7), 2).Return(&entity.Checkpoint{ID: 20, RouteID: 7, Seq: 2}, nil)
	mockProofRepo.On("GetByTeamAndCheckpoint", uint(3), uint(20)).Return(&entity.Proof{
		ID: 100, TeamID: 3, CheckpointID: 20, Status: entity.ProofStatusApproved,
	}, nil)

	// Act
	_, err := svc.Submit("100", "file-3")

	// Assert
	require.Error(t, err, "Зачтенный пруф нельзя переотправить")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyProcessed)
	mockProofRepo.AssertNotCalled(t, "Resubmit", mock.Anything, mock.Anything, mock.Anything)
}

func TestProofService_Submit_OnlyCaptain(t *testing.T) {
	// Arrange
	mockProofRepo := new(MockProofRepo)
	mockTeamRepo := new(MockTeamRepo)
	mockMemberRepo := new(MockMemberRepo)
	mockUserRepo := new(MockUserRepo)
	mockRouteRepo := new(MockRouteRepo)
	svc := createTestProofService(mockProofRepo, mockTeamRepo, mockMemberRepo, mockUserRepo, mockRouteRepo)

	mockUserRepo.On("GetByTgID", "100").Return(&entity.User{ID: 10, TgID: "100"}, nil)
	mockMemberRepo.On("GetByUserID", uint(10)).Return(&entity.TeamMember{ID: 1, TeamID: 3, UserID: 10, Role: entity.RolePlayer}, nil)

	// Act
	_, err := svc.Submit("100", "file-1")

	// Assert
	require.Error(t, err, "Рядовой участник не может отправлять пруфы")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestProofService_Submit_RequiresStartedTeam(t *testing.T) {
	// Arrange
	mockProofRepo := new(MockProofRepo)
	mockTeamRepo := new(MockTeamRepo)
	mockMemberRepo := new(MockMemberRepo)
	mockUserRepo := new(MockUserRepo)
	mockRouteRepo := new(MockRouteRepo)
	svc := createTestProofService(mockProofRepo, mockTeamRepo, mockMemberRepo, mockUserRepo, mockRouteRepo)

	routeID := uint(7)
	mockUserRepo.On("GetByTgID", "100").Return(&entity.User{ID: 10, TgID: "100"}, nil)
	mockMemberRepo.On("GetByUserID", uint(10)).Return(&entity.TeamMember{ID: 1, TeamID: 3, UserID: 10, Role: entity.RoleCaptain}, nil)
	mockTeamRepo.On("GetByID", uint(3)).Return(&entity.Team{ID: 3, RouteID: &routeID}, nil)

	// Act
	_, err := svc.Submit("100", "file-1")

	// Assert
	require.Error(t, err, "До старта пруфы не принимаются")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestProofService_Submit_RefusedAfterFinish(t *testing.T) {
	// Arrange
	mockProofRepo := new(MockProofRepo)
	mockTeamRepo := new(MockTeamRepo)
	mockMemberRepo := new(MockMemberRepo)
	mockUserRepo := new(MockUserRepo)
	mockRouteRepo := new(MockRouteRepo)
	svc := createTestProofService(mockProofRepo, mockTeamRepo, mockMemberRepo, mockUserRepo, mockRouteRepo)

	team := startedTeam(3, 7, 5)
	finished := time.Now()
	team.FinishedAt = &finished
	mockUserRepo.On("GetByTgID", "100").Return(&entity.User{ID: 10, TgID: "100"}, nil)
	mockMemberRepo.On("GetByUserID", uint(10)).Return(&entity.TeamMember{ID: 1, TeamID: 3, UserID: 10, Role: entity.RoleCaptain}, nil)
	mockTeamRepo.On("GetByID", uint(3)).Return(team, nil)

	// Act
	_, err := svc.Submit("100", "file-1")

	// Assert: отказ объясняет настоящую причину — маршрут уже пройден
	require.Error(t, err, "После финиша пруфы не принимаются")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Contains(t, err.Error(), "route already finished")
	mockProofRepo.AssertNotCalled(t, "Create", mock.Anything)
}

// ============================================================================
// Тесты решения модератора
// ============================================================================

func TestProofService_Decide_ApproveAdvancesTeam(t *testing.T) {
	// Arrange
	mockProofRepo := new(MockProofRepo)
	mockTeamRepo := new(MockTeamRepo)
	mockRouteRepo := new(MockRouteRepo)
	svc := createTestProofService(mockProofRepo, mockTeamRepo, new(MockMemberRepo), new(MockUserRepo), mockRouteRepo)

	mockProofRepo.On("GetByID", uint(100)).Return(&entity.Proof{
		ID: 100, TeamID: 3, CheckpointID: 20, Status: entity.ProofStatusPending,
	}, nil)
	mockProofRepo.On("Decide", uint(100), entity.ProofStatusApproved, "ок", mock.AnythingOfType("time.Time")).Return(true, nil)
	mockTeamRepo.On("GetByID", uint(3)).Return(startedTeam(3, 7, 2), nil)
	mockRouteRepo.On("CountCheckpoints", uint(7)).Return(int64(5), nil)
	mockRouteRepo.On("GetCheckpointByID", uint(20)).Return(&entity.Checkpoint{ID: 20, RouteID: 7, Seq: 2}, nil)
	mockTeamRepo.On("AdvanceCheckpoint", uint(3), 2, 3).Return(true, nil)
	mockProofRepo.On("CountApproved", uint(3)).Return(int64(2), nil)

	// Act
	result, err := svc.Decide(100, true, "ок")

	// Assert
	require.NoError(t, err, "Зачет должен быть успешным")
	assert.Equal(t, entity.ProofStatusApproved, result.Status)
	assert.Equal(t, 2, result.Done)
	assert.Equal(t, 5, result.Total)
	assert.False(t, result.Finished, "Команда еще не на последнем чекпойнте")
	mockTeamRepo.AssertCalled(t, "AdvanceCheckpoint", uint(3), 2, 3)
	mockTeamRepo.AssertNotCalled(t, "MarkFinished", mock.Anything, mock.Anything)
	mockProofRepo.AssertExpectations(t)
}

func TestProofService_Decide_ApproveLastCheckpointFinishes(t *testing.T) {
	// Arrange
	mockProofRepo := new(MockProofRepo)
	mockTeamRepo := new(MockTeamRepo)
	mockRouteRepo := new(MockRouteRepo)
	svc := createTestProofService(mockProofRepo, mockTeamRepo, new(MockMemberRepo), new(MockUserRepo), mockRouteRepo)

	mockProofRepo.On("GetByID", uint(101)).Return(&entity.Proof{
		ID: 101, TeamID: 3, CheckpointID: 25, Status: entity.ProofStatusPending,
	}, nil)
	mockProofRepo.On("Decide", uint(101), entity.ProofStatusApproved, "", mock.AnythingOfType("time.Time")).Return(true, nil)
	mockTeamRepo.On("GetByID", uint(3)).Return(startedTeam(3, 7, 5), nil)
	mockRouteRepo.On("CountCheckpoints", uint(7)).Return(int64(5), nil)
	mockRouteRepo.On("GetCheckpointByID", uint(25)).Return(&entity.Checkpoint{ID: 25, RouteID: 7, Seq: 5}, nil)
	mockTeamRepo.On("MarkFinished", uint(3), mock.AnythingOfType("time.Time")).Return(true, nil)
	mockProofRepo.On("CountApproved", uint(3)).Return(int64(5), nil)

	// Act
	result, err := svc.Decide(101, true, "")

	// Assert
	require.NoError(t, err, "Зачет последнего чекпойнта должен быть успешным")
	assert.True(t, result.Finished, "Команда должна финишировать")
	assert.Equal(t, 5, result.Done)
	mockTeamRepo.AssertNotCalled(t, "AdvanceCheckpoint", mock.Anything, mock.Anything, mock.Anything)
	mockTeamRepo.AssertExpectations(t)
}

func TestProofService_Decide_RejectKeepsProgress(t *testing.T) {
	// Arrange
	mockProofRepo := new(MockProofRepo)
	mockTeamRepo := new(MockTeamRepo)
	mockRouteRepo := new(MockRouteRepo)
	svc := createTestProofService(mockProofRepo, mockTeamRepo, new(MockMemberRepo), new(MockUserRepo), mockRouteRepo)

	mockProofRepo.On("GetByID", uint(102)).Return(&entity.Proof{
		ID: 102, TeamID: 3, CheckpointID: 20, Status: entity.ProofStatusPending,
	}, nil)
	mockProofRepo.On("Decide", uint(102), entity.ProofStatusRejected, "не та локация", mock.AnythingOfType("time.Time")).Return(true, nil)
	mockTeamRepo.On("GetByID", uint(3)).Return(startedTeam(3, 7, 2), nil)
	mockRouteRepo.On("CountCheckpoints", uint(7)).Return(int64(5), nil)
	mockProofRepo.On("CountApproved", uint(3)).Return(int64(1), nil)

	// Act
	result, err := svc.Decide(102, false, "не та локация")

	// Assert
	require.NoError(t, err, "Отклонение должно быть успешным")
	assert.Equal(t, entity.ProofStatusRejected, result.Status)
	mockTeamRepo.AssertNotCalled(t, "AdvanceCheckpoint", mock.Anything, mock.Anything, mock.Anything)
	mockTeamRepo.AssertNotCalled(t, "MarkFinished", mock.Anything, mock.Anything)
}

func TestProofService_Decide_SecondDecisionRejected(t *testing.T) {
	// Arrange
	mockProofRepo := new(MockProofRepo)
	svc := createTestProofService(mockProofRepo, new(MockTeamRepo), new(MockMemberRepo), new(MockUserRepo), new(MockRouteRepo))

	mockProofRepo.On("GetByID", uint(103)).Return(&entity.Proof{
		ID: 103, TeamID: 3, CheckpointID: 20, Status: entity.ProofStatusApproved,
	}, nil)
	mockProofRepo.On("Decide", uint(103), entity.ProofStatusApproved, "", mock.AnythingOfType("time.Time")).Return(false, nil)

	// Act
	_, err := svc.Decide(103, true, "")

	// Assert
	require.Error(t, err, "Повторное решение должно быть отклонено")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyProcessed)
	mockProofRepo.AssertExpectations(t)
}

func TestProofService_Decide_StaleCheckpointDoesNotAdvance(t *testing.T) {
	// Arrange
	mockProofRepo := new(MockProofRepo)
	mockTeamRepo := new(MockTeamRepo)
	mockRouteRepo := new(MockRouteRepo)
	svc := createTestProofService(mockProofRepo, mockTeamRepo, new(MockMemberRepo), new(MockUserRepo), mockRouteRepo)

	// Команда уже на seq 4, а зачитывается пруф seq 2
	mockProofRepo.On("GetByID", uint(104)).Return(&entity.Proof{
		ID: 104, TeamID: 3, CheckpointID: 20, Status: entity.ProofStatusPending,
	}, nil)
	mockProofRepo.On("Decide", uint(104), entity.ProofStatusApproved, "", mock.AnythingOfType("time.Time")).Return(true, nil)
	mockTeamRepo.On("GetByID", uint(3)).Return(startedTeam(3, 7, 4), nil)
	mockRouteRepo.On("CountCheckpoints", uint(7)).Return(int64(5), nil)
	mockRouteRepo.On("GetCheckpointByID", uint(20)).Return(&entity.Checkpoint{ID: 20, RouteID: 7, Seq: 2}, nil)
	mockProofRepo.On("CountApproved", uint(3)).Return(int64(3), nil)

	// Act
	result, err := svc.Decide(104, true, "")

	// Assert
	require.NoError(t, err, "Зачет устаревшего пруфа должен пройти без продвижения")
	assert.False(t, result.Finished)
	mockTeamRepo.AssertNotCalled(t, "AdvanceCheckpoint", mock.Anything, mock.Anything, mock.Anything)
	mockTeamRepo.AssertNotCalled(t, "MarkFinished", mock.Anything, mock.Anything)
}

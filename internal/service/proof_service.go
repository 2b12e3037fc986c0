package service

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/quest-api/internal/domain/entity"
	"github.com/yourusername/quest-api/internal/domain/repository"
	apperrors "github.com/yourusername/quest-api/internal/pkg/errors"
)

// SubmitResult — итог отправки пруфа.
type SubmitResult struct {
	ProofID       uint   `json:"proof_id"`
	TeamID        uint   `json:"team_id"`
	CheckpointSeq int    `json:"checkpoint_seq"`
	Status        string `json:"status"`
	Resubmitted   bool   `json:"resubmitted"`
}

// DecisionResult — итог решения модератора.
type DecisionResult struct {
	ProofID  uint   `json:"proof_id"`
	TeamID   uint   `json:"team_id"`
	Status   string `json:"status"`
	Done     int    `json:"done"`
	Total    int    `json:"total"`
	Finished bool   `json:"finished"`
}

// ProofService отвечает за очередь модерации фотоподтверждений и за
// продвижение команды по маршруту при зачете.
type ProofService struct {
	proofRepo  repository.ProofRepository
	teamRepo   repository.TeamRepository
	memberRepo repository.MemberRepository
	userRepo   repository.UserRepository
	routeRepo  repository.RouteRepository
	proofsDir  string
}

// NewProofService создает новый сервис модерации
func NewProofService(
	proofRepo repository.ProofRepository,
	teamRepo repository.TeamRepository,
	memberRepo repository.MemberRepository,
	userRepo repository.UserRepository,
	routeRepo repository.RouteRepository,
	proofsDir string,
) *ProofService {
	return &ProofService{
		proofRepo:  proofRepo,
		teamRepo:   teamRepo,
		memberRepo: memberRepo,
		userRepo:   userRepo,
		routeRepo:  routeRepo,
		proofsDir:  proofsDir,
	}
}

// Submit принимает фотоподтверждение текущего чекпойнта от капитана.
// Пара (команда, чекпойнт) хранит одну запись: повторная отправка
// перезаписывает попытку и возвращает ее в PENDING; зачтенный пруф
// неизменяем.
func (s *ProofService) Submit(tgID, fileID string) (*SubmitResult, error) {
	if fileID == "" {
		return nil, fmt.Errorf("%w: file id is required", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByTgID(tgID)
	if err != nil {
		return nil, err
	}
	member, err := s.memberRepo.GetByUserID(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: user has no team", apperrors.ErrConflict)
	}
	if !member.IsCaptain() {
		return nil, fmt.Errorf("%w: only captain can submit", apperrors.ErrForbidden)
	}

	team, err := s.teamRepo.GetByID(member.TeamID)
	if err != nil {
		return nil, err
	}
	progress := team.Progress()
	if progress.IsFinished() {
		return nil, fmt.Errorf("%w: route already finished", apperrors.ErrConflict)
	}
	if !progress.IsStarted() {
		return nil, fmt.Errorf("%w: team has not started yet", apperrors.ErrConflict)
	}

	cp, err := s.routeRepo.GetCheckpointBySeq(*team.RouteID, progress.Seq)
	if err != nil {
		return nil, err
	}

	proof, err := s.proofRepo.GetByTeamAndCheckpoint(team.ID, cp.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		proof = &entity.Proof{
			TeamID:       team.ID,
			CheckpointID: cp.ID,
			Status:       entity.ProofStatusPending,
			FileID:       fileID,
			SubmittedBy:  user.ID,
		}
		if err := s.proofRepo.Create(proof); err != nil {
			return nil, err
		}
		log.Printf("[ProofService] Команда %d отправила пруф чекпойнта %d (seq %d)", team.ID, cp.ID, cp.Seq)
		return &SubmitResult{
			ProofID:       proof.ID,
			TeamID:        team.ID,
			CheckpointSeq: cp.Seq,
			Status:        proof.Status,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	if proof.IsApproved() {
		return nil, fmt.Errorf("%w: checkpoint already approved", apperrors.ErrAlreadyProcessed)
	}

	ok, err := s.proofRepo.Resubmit(proof.ID, fileID, user.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Гонка: пруф успели зачесть между чтением и перезаписью
		return nil, fmt.Errorf("%w: checkpoint already approved", apperrors.ErrAlreadyProcessed)
	}

	log.Printf("[ProofService] Команда %d переотправила пруф чекпойнта %d (seq %d)", team.ID, cp.ID, cp.Seq)
	return &SubmitResult{
		ProofID:       proof.ID,
		TeamID:        team.ID,
		CheckpointSeq: cp.Seq,
		Status:        entity.ProofStatusPending,
		Resubmitted:   true,
	}, nil
}

// SavePhoto сохраняет загруженный файл в каталог пруфов под ключом
// со случайным uuid и возвращает этот ключ как file id.
func (s *ProofService) SavePhoto(filename string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.proofsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create proofs dir: %w", err)
	}
	key := uuid.New().String() + filepath.Ext(filename)
	path := filepath.Join(s.proofsDir, key)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create proof file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write proof file: %w", err)
	}
	return key, nil
}

// Decide принимает решение модератора по пруфу. Guard по статусу
// PENDING гарантирует, что из конкурирующих решений срабатывает ровно
// одно; остальные получают ErrAlreadyProcessed. При зачете команда
// продвигается на следующий чекпойнт либо финиширует.
func (s *ProofService) Decide(proofID uint, approve bool, note string) (*DecisionResult, error) {
	proof, err := s.proofRepo.GetByID(proofID)
	if err != nil {
		return nil, err
	}

	status := entity.ProofStatusRejected
	if approve {
		status = entity.ProofStatusApproved
	}

	ok, err := s.proofRepo.Decide(proofID, status, note, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: proof %d", apperrors.ErrAlreadyProcessed, proofID)
	}

	team, err := s.teamRepo.GetByID(proof.TeamID)
	if err != nil {
		return nil, err
	}

	result := &DecisionResult{
		ProofID: proofID,
		TeamID:  team.ID,
		Status:  status,
	}

	if team.RouteID != nil {
		total, err := s.routeRepo.CountCheckpoints(*team.RouteID)
		if err != nil {
			return nil, err
		}
		result.Total = int(total)
	}

	if approve {
		if err := s.advanceTeam(team, proof, result); err != nil {
			return nil, err
		}
	}

	done, err := s.proofRepo.CountApproved(team.ID)
	if err != nil {
		return nil, err
	}
	result.Done = int(done)

	log.Printf("[ProofService] Пруф %d команды %d: %s (%d/%d)", proofID, team.ID, status, result.Done, result.Total)
	return result, nil
}

// advanceTeam продвигает команду после зачета пруфа текущего чекпойнта.
// Зачет не текущего чекпойнта (устаревшая запись) прогресс не трогает.
func (s *ProofService) advanceTeam(team *entity.Team, proof *entity.Proof, result *DecisionResult) error {
	cp, err := s.routeRepo.GetCheckpointByID(proof.CheckpointID)
	if err != nil {
		return err
	}
	if cp.Seq != team.CurrentSeq {
		return nil
	}

	if cp.Seq >= result.Total {
		ok, err := s.teamRepo.MarkFinished(team.ID, time.Now().UTC())
		if err != nil {
			return err
		}
		if ok {
			result.Finished = true
			log.Printf("[ProofService] Команда %d (%s) финишировала", team.ID, team.Name)
		}
		return nil
	}

	ok, err := s.teamRepo.AdvanceCheckpoint(team.ID, cp.Seq, cp.Seq+1)
	if err != nil {
		return err
	}
	if ok {
		log.Printf("[ProofService] Команда %d перешла на чекпойнт %d", team.ID, cp.Seq+1)
	}
	return nil
}

// ListPending возвращает очередь модерации в порядке поступления
func (s *ProofService) ListPending() ([]repository.PendingProofRow, error) {
	return s.proofRepo.ListPending()
}

package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/quest-api/internal/domain/entity"
	"github.com/yourusername/quest-api/internal/domain/repository"
	apperrors "github.com/yourusername/quest-api/internal/pkg/errors"
)

// ProofRepo реализует repository.ProofRepository
type ProofRepo struct {
	db *gorm.DB
}

// NewProofRepo создает новый репозиторий пруфов
func NewProofRepo(db *gorm.DB) *ProofRepo {
	return &ProofRepo{db: db}
}

// Create создает новый пруф
func (r *ProofRepo) Create(proof *entity.Proof) error {
	return r.db.Create(proof).Error
}

// GetByID возвращает пруф по ID
func (r *ProofRepo) GetByID(id uint) (*entity.Proof, error) {
	var proof entity.Proof
	err := r.db.First(&proof, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &proof, nil
}

// GetByTeamAndCheckpoint возвращает единственную запись пруфа пары
// (команда, чекпойнт)
func (r *ProofRepo) GetByTeamAndCheckpoint(teamID, checkpointID uint) (*entity.Proof, error) {
	var proof entity.Proof
	err := r.db.
		Where("team_id = ? AND checkpoint_id = ?", teamID, checkpointID).
		First(&proof).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &proof, nil
}

// Resubmit перезаписывает попытку и возвращает запись в PENDING.
// Guard «status <> APPROVED» защищает зачтённый пруф от перезаписи.
func (r *ProofRepo) Resubmit(proofID uint, fileID string, submittedBy uint) (bool, error) {
	res := r.db.Model(&entity.Proof{}).
		Where("id = ? AND status <> ?", proofID, entity.ProofStatusApproved).
		Updates(map[string]interface{}{
			"status":         entity.ProofStatusPending,
			"file_id":        fileID,
			"submitted_by":   submittedBy,
			"judged_at":      nil,
			"moderator_note": "",
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Decide переводит пруф из PENDING в конечный статус. Guard по статусу
// сериализует конкурирующие решения: срабатывает ровно одно.
func (r *ProofRepo) Decide(proofID uint, status, note string, judgedAt time.Time) (bool, error) {
	res := r.db.Model(&entity.Proof{}).
		Where("id = ? AND status = ?", proofID, entity.ProofStatusPending).
		Updates(map[string]interface{}{
			"status":         status,
			"moderator_note": note,
			"judged_at":      judgedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountApproved возвращает количество зачтённых чекпойнтов команды
func (r *ProofRepo) CountApproved(teamID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Proof{}).
		Where("team_id = ? AND status = ?", teamID, entity.ProofStatusApproved).
		Count(&count).Error
	return count, err
}

// ListPending возвращает очередь модерации FIFO по времени отправки
func (r *ProofRepo) ListPending() ([]repository.PendingProofRow, error) {
	var rows []repository.PendingProofRow
	err := r.db.Table("proofs").
		Select(`proofs.id AS proof_id,
			proofs.team_id,
			teams.name AS team_name,
			proofs.checkpoint_id,
			checkpoints.seq AS checkpoint_seq,
			checkpoints.title AS checkpoint_title,
			proofs.file_id,
			proofs.submitted_by,
			proofs.created_at`).
		Joins("JOIN teams ON teams.id = proofs.team_id").
		Joins("JOIN checkpoints ON checkpoints.id = proofs.checkpoint_id").
		Where("proofs.status = ?", entity.ProofStatusPending).
		Order("proofs.created_at ASC").
		Scan(&rows).Error
	return rows, err
}

// DeleteAll удаляет все пруфы (сброс прогресса)
func (r *ProofRepo) DeleteAll() error {
	return r.db.Where("1 = 1").Delete(&entity.Proof{}).Error
}

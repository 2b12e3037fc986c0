package repository

import (
	"time"

	"github.com/yourusername/quest-api/internal/domain/entity"
)

// PendingProofRow — строка очереди модерации с присоединёнными
// данными команды и чекпойнта.
type PendingProofRow struct {
	ProofID         uint      `json:"proof_id"`
	TeamID          uint      `json:"team_id"`
	TeamName        string    `json:"team_name"`
	CheckpointID    uint      `json:"checkpoint_id"`
	CheckpointSeq   int       `json:"checkpoint_seq"`
	CheckpointTitle string    `json:"checkpoint_title"`
	FileID          string    `json:"file_id"`
	SubmittedBy     uint      `json:"submitted_by"`
	CreatedAt       time.Time `json:"created_at"`
}

// ProofRepository определяет методы для работы с пруфами
type ProofRepository interface {
	Create(proof *entity.Proof) error
	GetByID(id uint) (*entity.Proof, error)
	GetByTeamAndCheckpoint(teamID, checkpointID uint) (*entity.Proof, error)

	// Resubmit перезаписывает существующую запись новой попыткой и
	// возвращает её в PENDING. Не срабатывает для APPROVED.
	Resubmit(proofID uint, fileID string, submittedBy uint) (bool, error)

	// Decide переводит пруф из PENDING в status. Возвращает false,
	// если пруф уже не в PENDING — решение уже принято.
	Decide(proofID uint, status, note string, judgedAt time.Time) (bool, error)

	CountApproved(teamID uint) (int64, error)

	// ListPending возвращает очередь модерации в порядке поступления.
	ListPending() ([]PendingProofRow, error)

	// DeleteAll сбрасывает весь прогресс (админская операция).
	DeleteAll() error
}

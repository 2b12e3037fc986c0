package entity

import (
	"time"
)

// Статусы пруфа
const (
	ProofStatusPending  = "PENDING"
	ProofStatusApproved = "APPROVED"
	ProofStatusRejected = "REJECTED"
)

// Proof — фотоподтверждение команды для конкретного чекпойнта.
// Пара (team_id, checkpoint_id) уникальна: запись моделирует «последнюю
// попытку», а не историю. Повторная отправка при PENDING/REJECTED
// перезаписывает эту же строку; APPROVED неизменяем.
type Proof struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	TeamID       uint       `gorm:"not null;index;uniqueIndex:uq_proof_team_cp" json:"team_id"`
	CheckpointID uint       `gorm:"not null;uniqueIndex:uq_proof_team_cp" json:"checkpoint_id"`
	Status       string     `gorm:"size:16;not null;default:'PENDING';index" json:"status"`
	FileID       string     `gorm:"type:text;not null" json:"file_id"`
	SubmittedBy  uint       `gorm:"not null" json:"submitted_by"`
	JudgedAt     *time.Time `json:"judged_at"`
	ModeratorNote string    `gorm:"type:text" json:"moderator_note"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Proof) TableName() string {
	return "proofs"
}

// IsPending проверяет, что пруф ждёт модерации.
func (p *Proof) IsPending() bool {
	return p.Status == ProofStatusPending
}

// IsApproved проверяет, что пруф зачтён.
func (p *Proof) IsApproved() bool {
	return p.Status == ProofStatusApproved
}

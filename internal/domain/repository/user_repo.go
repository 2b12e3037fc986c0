package repository

import (
	"github.com/yourusername/quest-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с участниками
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByTgID(tgID string) (*entity.User, error)
	GetByPhone(phone string) (*entity.User, error)
	Update(user *entity.User) error
}

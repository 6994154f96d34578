package repository

import (
	"context"

	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Las búsquedas devuelven (nil, nil) cuando no hay coincidencia.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmailAndCompany(ctx context.Context, email string, companyID int64) (*entity.User, error)
	ListByCompany(ctx context.Context, companyID int64) ([]*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
}

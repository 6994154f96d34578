package repository

import (
	"context"

	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure. GetByID devuelve (nil, nil) si no existe.
type CompanyRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Company, error)
	List(ctx context.Context) ([]*entity.Company, error)
}

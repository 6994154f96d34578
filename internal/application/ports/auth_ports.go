package ports

import (
	"context"

	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
)

// CompanyDirectory resuelve la entrada libre del usuario (ID, nombre o NIT) a una empresa.
// Devuelve domain.ErrCompanyNotFound si no hay coincidencia y domain.ErrTransport si el
// directorio no respondió.
type CompanyDirectory interface {
	Lookup(ctx context.Context, input string) (*entity.Company, error)
}

// LoginGrant resultado de un login aceptado por el backend.
type LoginGrant struct {
	Token   string
	User    *entity.User
	Company *entity.Company // empresa anidada en la respuesta, si vino
	Message string
}

// Credentials operaciones de autenticación contra el backend.
//
// Login devuelve *domain.CredentialError cuando el backend respondió con un estado de
// rechazo, domain.ErrTransport cuando no hubo respuesta y domain.ErrInvalidResponse
// cuando la respuesta no trae token o usuario.
type Credentials interface {
	Login(ctx context.Context, email, password string, companyID int64) (*LoginGrant, error)
	Logout(ctx context.Context) error
	RefreshToken(ctx context.Context) (string, error)
	CurrentUser(ctx context.Context) (*entity.User, error)
}

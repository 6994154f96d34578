package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jhoicas/lxhallazgos/internal/application/dto"
	"github.com/jhoicas/lxhallazgos/internal/application/ports"
	"github.com/jhoicas/lxhallazgos/internal/domain"
	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
)

var _ ports.UsersGateway = (*Users)(nil)

// Rutas de usuarios.
const (
	PathUsers   = "/api/usuarios"
	PathProfile = "/api/usuarios/profile"
)

// Users adaptador de gestión de usuarios.
type Users struct {
	t *Transport
}

// NewUsers construye el adaptador.
func NewUsers(t *Transport) *Users {
	return &Users{t: t}
}

func userPath(id int64) string {
	return PathUsers + "/" + strconv.FormatInt(id, 10)
}

func (u *Users) send(ctx context.Context, method, path string, in any) (*entity.User, error) {
	var out dto.UserPayload
	if err := u.t.Do(ctx, method, path, in, &out); err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, domain.ErrInvalidResponse
	}
	return out.ToEntity(), nil
}

func (u *Users) Get(ctx context.Context, id int64) (*entity.User, error) {
	return u.send(ctx, http.MethodGet, userPath(id), nil)
}

func (u *Users) Create(ctx context.Context, in dto.CreateUserRequest) (*entity.User, error) {
	return u.send(ctx, http.MethodPost, PathUsers, in)
}

func (u *Users) Update(ctx context.Context, id int64, in dto.UpdateUserRequest) (*entity.User, error) {
	return u.send(ctx, http.MethodPut, userPath(id), in)
}

func (u *Users) Delete(ctx context.Context, id int64) error {
	return u.t.Do(ctx, http.MethodDelete, userPath(id), nil, nil)
}

func (u *Users) UpdateProfile(ctx context.Context, in dto.UpdateProfileRequest) (*entity.User, error) {
	return u.send(ctx, http.MethodPut, PathProfile, in)
}

func (u *Users) SetActive(ctx context.Context, id int64, active bool) (*entity.User, error) {
	return u.send(ctx, http.MethodPut, userPath(id)+"/estado", dto.SetUserStatusRequest{Active: active})
}

// ChangePassword un 401 en esta ruta significa contraseña actual incorrecta.
func (u *Users) ChangePassword(ctx context.Context, current, next string) error {
	err := u.t.Do(ctx, http.MethodPut, PathProfile, dto.ChangePasswordRequest{CurrentPassword: current, Password: next}, nil)
	if statusOf(err) == http.StatusUnauthorized {
		return domain.ErrWrongPassword
	}
	return err
}

package users_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lxhallazgos/internal/application/dto"
	"github.com/jhoicas/lxhallazgos/internal/application/session"
	"github.com/jhoicas/lxhallazgos/internal/application/users"
	"github.com/jhoicas/lxhallazgos/internal/domain"
	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
	"github.com/jhoicas/lxhallazgos/internal/infrastructure/storage"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type recordingGateway struct {
	calls     []string
	profile   *entity.User
	directory map[int64]*entity.User
	changeErr error
}

func (g *recordingGateway) Get(_ context.Context, id int64) (*entity.User, error) {
	g.calls = append(g.calls, "get")
	u, ok := g.directory[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u.Clone(), nil
}

func (g *recordingGateway) Create(_ context.Context, in dto.CreateUserRequest) (*entity.User, error) {
	g.calls = append(g.calls, "create")
	return &entity.User{ID: 10, Name: in.Name, Role: entity.Role(in.Role)}, nil
}

func (g *recordingGateway) Update(_ context.Context, id int64, in dto.UpdateUserRequest) (*entity.User, error) {
	g.calls = append(g.calls, "update")
	return &entity.User{ID: id, Name: in.Name}, nil
}

func (g *recordingGateway) Delete(context.Context, int64) error {
	g.calls = append(g.calls, "delete")
	return nil
}

func (g *recordingGateway) SetActive(_ context.Context, id int64, active bool) (*entity.User, error) {
	g.calls = append(g.calls, "estado")
	return &entity.User{ID: id, CompanyID: 1, Active: active}, nil
}

func (g *recordingGateway) UpdateProfile(context.Context, dto.UpdateProfileRequest) (*entity.User, error) {
	g.calls = append(g.calls, "profile")
	return g.profile, nil
}

func (g *recordingGateway) ChangePassword(context.Context, string, string) error {
	g.calls = append(g.calls, "password")
	return g.changeErr
}

func serviceAs(t *testing.T, u *entity.User) (*users.Service, *recordingGateway, *session.Store) {
	t.Helper()
	st := session.NewStore(storage.NewMemory(), zerolog.Nop())
	now := time.Now()
	require.True(t, st.Save(context.Background(), entity.Session{Token: "tok", User: u, LoginTime: &now}))
	gw := &recordingGateway{directory: map[int64]*entity.User{}}
	for _, known := range []*entity.User{super, admin, editor, paola, foreign} {
		gw.directory[known.ID] = known
	}
	return users.NewService(st, gw, zerolog.Nop()), gw, st
}

var (
	super  = &entity.User{ID: 9, CompanyID: 1, Role: entity.RoleSuperAdmin, Active: true}
	admin  = &entity.User{ID: 1, CompanyID: 1, Name: "Admin", Role: entity.RoleAdmin, Active: true}
	editor = &entity.User{ID: 2, CompanyID: 1, Role: entity.RoleEditor, Active: true}
	paola  = &entity.User{ID: 3, CompanyID: 1, Name: "Paola", LastName: "Vargas", Email: "usuario@empresa1.com", Role: entity.RoleUsuario, Active: true}

	foreign = &entity.User{ID: 20, CompanyID: 2, Role: entity.RoleUsuario, Active: true}
)

func validCreate() dto.CreateUserRequest {
	return dto.CreateUserRequest{Name: "Javier", LastName: "Gandola", Email: "javier@empresa1.com", Password: "secreto", Role: "usuario"}
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_SoloAdministradores(t *testing.T) {
	svc, gw, _ := serviceAs(t, editor)
	_, err := svc.Create(context.Background(), validCreate())
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, gw.calls)

	svc, gw, _ = serviceAs(t, admin)
	u, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)
	assert.Equal(t, int64(10), u.ID)
	assert.Equal(t, []string{"create"}, gw.calls)
}

func TestCreate_Validaciones(t *testing.T) {
	cases := map[string]func(*dto.CreateUserRequest){
		"super_admin":     func(r *dto.CreateUserRequest) { r.Role = "super_admin" },
		"rol desconocido": func(r *dto.CreateUserRequest) { r.Role = "root" },
		"sin apellido":    func(r *dto.CreateUserRequest) { r.LastName = " " },
		"sin correo":      func(r *dto.CreateUserRequest) { r.Email = "" },
		"password corta":  func(r *dto.CreateUserRequest) { r.Password = "12345" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			svc, gw, _ := serviceAs(t, super)
			in := validCreate()
			mutate(&in)
			_, err := svc.Create(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, gw.calls)
		})
	}
}

func TestCreate_RolPorDefecto(t *testing.T) {
	svc, _, _ := serviceAs(t, admin)
	in := validCreate()
	in.Role = ""
	u, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUsuario, u.Role)
}

// ──────────────────────────────────────────────────────────────────────────────
// Update / Delete
// ──────────────────────────────────────────────────────────────────────────────

func TestGet(t *testing.T) {
	ctx := context.Background()
	svc, gw, _ := serviceAs(t, admin)

	u, err := svc.Get(ctx, paola.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paola", u.Name)

	_, err = svc.Get(ctx, foreign.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound, "otra empresa")

	_, err = svc.Get(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, []string{"get", "get"}, gw.calls)

	svc, gw, _ = serviceAs(t, paola)
	_, err = svc.Get(ctx, admin.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, gw.calls, "sin permiso no se consulta el backend")
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc, gw, _ := serviceAs(t, admin)
	in := dto.UpdateUserRequest{Name: "Paola", LastName: "Vargas", Email: "usuario@empresa1.com", Role: "editor"}

	_, err := svc.Update(ctx, super.ID, in)
	assert.ErrorIs(t, err, domain.ErrForbidden, "admin no edita super_admin")
	assert.Equal(t, []string{"get"}, gw.calls)

	gw.calls = nil
	bad := in
	bad.Role = "super_admin"
	_, err = svc.Update(ctx, paola.ID, bad)
	assert.ErrorIs(t, err, domain.ErrValidation)

	bad = in
	bad.Password = "123"
	_, err = svc.Update(ctx, paola.ID, bad)
	assert.ErrorIs(t, err, domain.ErrValidation)

	bad = in
	bad.Email = ""
	_, err = svc.Update(ctx, paola.ID, bad)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, gw.calls)

	_, err = svc.Update(ctx, paola.ID, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"get", "update"}, gw.calls)
}

func TestUpdate_EditorSinPermiso(t *testing.T) {
	svc, gw, _ := serviceAs(t, editor)
	_, err := svc.Update(context.Background(), paola.ID, dto.UpdateUserRequest{Name: "P", LastName: "V", Email: "p@v.co"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, gw.calls)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, gw, _ := serviceAs(t, admin)

	assert.ErrorIs(t, svc.Delete(ctx, admin.ID), domain.ErrForbidden, "nunca a sí mismo")
	assert.ErrorIs(t, svc.Delete(ctx, 0), domain.ErrValidation)
	assert.ErrorIs(t, svc.Delete(ctx, foreign.ID), domain.ErrUserNotFound)
	assert.NotContains(t, gw.calls, "delete")

	gw.calls = nil
	require.NoError(t, svc.Delete(ctx, paola.ID))
	assert.Equal(t, []string{"get", "delete"}, gw.calls)
}

// El rol del objetivo sale del backend: un admin no desactiva a un super_admin aunque solo
// conozca su ID.
func TestDelete_SuperAdminPorID(t *testing.T) {
	svc, gw, _ := serviceAs(t, admin)

	err := svc.Delete(context.Background(), super.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, []string{"get"}, gw.calls)
}

func TestSetActive(t *testing.T) {
	ctx := context.Background()
	svc, gw, _ := serviceAs(t, admin)

	_, err := svc.SetActive(ctx, super.ID, false)
	assert.ErrorIs(t, err, domain.ErrForbidden, "admin no edita super_admin")

	_, err = svc.SetActive(ctx, admin.ID, false)
	assert.ErrorIs(t, err, domain.ErrValidation, "no puede desactivarse a sí mismo")
	assert.NotContains(t, gw.calls, "estado")

	u, err := svc.SetActive(ctx, paola.ID, false)
	require.NoError(t, err)
	assert.False(t, u.Active)
	assert.Contains(t, gw.calls, "estado")

	svc, gw, _ = serviceAs(t, editor)
	_, err = svc.SetActive(ctx, paola.ID, true)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, gw.calls)
}

// ──────────────────────────────────────────────────────────────────────────────
// Contraseña
// ──────────────────────────────────────────────────────────────────────────────

func TestChangePassword_Validaciones(t *testing.T) {
	cases := map[string][2]string{
		"sin actual":  {"", "nueva123"},
		"sin nueva":   {"pass", ""},
		"nueva corta": {"pass", "12345"},
	}
	for name, pw := range cases {
		t.Run(name, func(t *testing.T) {
			svc, gw, _ := serviceAs(t, paola)
			err := svc.ChangePassword(context.Background(), pw[0], pw[1])
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, gw.calls)
		})
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, gw, _ := serviceAs(t, paola)

	require.NoError(t, svc.ChangePassword(ctx, "pass", "nueva123"))
	assert.Equal(t, []string{"password"}, gw.calls)

	gw.changeErr = domain.ErrWrongPassword
	assert.ErrorIs(t, svc.ChangePassword(ctx, "otra", "nueva123"), domain.ErrWrongPassword)
}

func TestChangePassword_SinSesion(t *testing.T) {
	st := session.NewStore(storage.NewMemory(), zerolog.Nop())
	gw := &recordingGateway{}
	svc := users.NewService(st, gw, zerolog.Nop())

	assert.ErrorIs(t, svc.ChangePassword(context.Background(), "pass", "nueva123"), domain.ErrUnauthorized)
	assert.Empty(t, gw.calls)
}

// ──────────────────────────────────────────────────────────────────────────────
// Perfil
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateProfile_FusionaEnLaSesion(t *testing.T) {
	ctx := context.Background()
	svc, gw, st := serviceAs(t, paola)
	gw.profile = &entity.User{ID: 3, Name: "Paola Andrea"}

	out, err := svc.UpdateProfile(ctx, dto.UpdateProfileRequest{Name: "Paola Andrea", LastName: "Vargas", Email: "usuario@empresa1.com"})
	require.NoError(t, err)
	assert.Equal(t, "Paola Andrea", out.Name)
	assert.Equal(t, "Vargas", out.LastName, "lo no devuelto se conserva")
	assert.Equal(t, entity.RoleUsuario, out.Role)

	sess := st.Load(ctx)
	assert.Equal(t, "Paola Andrea", sess.User.Name)
	assert.Equal(t, "usuario@empresa1.com", sess.User.Email)
}

func TestUpdateProfile_PasswordCorta(t *testing.T) {
	svc, gw, _ := serviceAs(t, paola)
	_, err := svc.UpdateProfile(context.Background(), dto.UpdateProfileRequest{Password: "abc"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, gw.calls)
}

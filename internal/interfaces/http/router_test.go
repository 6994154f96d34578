package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/lxhallazgos/internal/application/auth"
	"github.com/jhoicas/lxhallazgos/internal/application/dto"
	"github.com/jhoicas/lxhallazgos/internal/application/usecase"
	"github.com/jhoicas/lxhallazgos/internal/infrastructure/memdb"
	apphttp "github.com/jhoicas/lxhallazgos/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Backend completo sobre el directorio en memoria
// ──────────────────────────────────────────────────────────────────────────────

func newBackendApp(t *testing.T) *fiber.App {
	t.Helper()
	seed, err := memdb.SeedUsers(bcrypt.MinCost)
	require.NoError(t, err)
	users := memdb.NewUserRepository(seed)
	companies := memdb.NewCompanyRepository(memdb.SeedCompanies())
	findings := memdb.NewFindingRepository(memdb.SeedFindings())
	log := zerolog.Nop()

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		CompanyUC: usecase.NewCompanyUseCase(companies),
		FindingUC: usecase.NewFindingUseCase(findings, users, log),
		UserUC:    usecase.NewUserUseCase(users, companies, bcrypt.MinCost, log),
		AuthUC:    auth.NewAuthUseCase(users, companies, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 60, Issuer: testIssuer}, log),
		JWTSecret: testJWTSecret,
		Log:       log,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func login(t *testing.T, app *fiber.App, email, password string, companyID int64) string {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: email, Password: password, CompanyID: companyID})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

// ──────────────────────────────────────────────────────────────────────────────
// Rutas
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_PublicDirectory(t *testing.T) {
	app := newBackendApp(t)
	resp := call(t, app, http.MethodGet, "/api/empresas/public", "", nil)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
	var list []dto.CompanyPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 3)
	assert.Equal(t, int64(1), list[0].ID)
}

func TestRouter_RequestIDIsEchoed(t *testing.T) {
	app := newBackendApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/empresas/public", nil)
	req.Header.Set(fiber.HeaderXRequestID, "abc-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(fiber.HeaderXRequestID))
}

func TestRouter_LoginStatuses(t *testing.T) {
	app := newBackendApp(t)
	cases := []struct {
		name string
		in   dto.LoginRequest
		want int
	}{
		{"ok", dto.LoginRequest{Email: "admin@empresa1.com", Password: "1234", CompanyID: 1}, http.StatusOK},
		{"contraseña", dto.LoginRequest{Email: "admin@empresa1.com", Password: "x", CompanyID: 1}, http.StatusUnauthorized},
		{"usuario", dto.LoginRequest{Email: "nadie@empresa1.com", Password: "x", CompanyID: 1}, http.StatusNotFound},
		{"vacío", dto.LoginRequest{CompanyID: 1}, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := call(t, app, http.MethodPost, "/api/auth/login", "", tc.in)
			defer resp.Body.Close()
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestRouter_MeAndRefresh(t *testing.T) {
	app := newBackendApp(t)
	token := login(t, app, "usuario@empresa1.com", "pass", 1)

	resp := call(t, app, http.MethodGet, "/api/auth/me", token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me dto.MeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	assert.Equal(t, int64(3), me.User.ID)
	assert.Equal(t, "usuario", me.User.Role)

	resp = call(t, app, http.MethodPost, "/api/auth/refresh", token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ref dto.RefreshResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ref))
	assert.True(t, ref.Success)
	assert.NotEmpty(t, ref.Token)

	resp = call(t, app, http.MethodGet, "/api/auth/me", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_FindingLifecycle(t *testing.T) {
	app := newBackendApp(t)
	admin := login(t, app, "admin@empresa1.com", "1234", 1)
	paola := login(t, app, "usuario@empresa1.com", "pass", 1)

	// Paola no tiene puede_editar: no crea.
	resp := call(t, app, http.MethodPost, "/api/hallazgos", paola, dto.CreateFindingRequest{Project: "P", Evaluator: "E"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/hallazgos", admin, dto.CreateFindingRequest{Project: "P", Evaluator: "E", Zone: "Metro"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dto.FindingPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.ID)

	resp = call(t, app, http.MethodPut, "/api/hallazgos/"+created.ID+"/close", admin, dto.CloseFindingRequest{Comment: "corto"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = call(t, app, http.MethodPut, "/api/hallazgos/"+created.ID+"/close", admin, dto.CloseFindingRequest{Comment: "Se corrigió en sitio"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var closed dto.FindingPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&closed))
	assert.Equal(t, "cerrado", closed.State)

	resp = call(t, app, http.MethodPut, "/api/hallazgos/"+created.ID+"/reopen", admin, dto.ReopenFindingRequest{Reason: "Volvió a presentarse"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, app, http.MethodDelete, "/api/hallazgos/"+created.ID, paola, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodDelete, "/api/hallazgos/"+created.ID, admin, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, app, http.MethodPut, "/api/hallazgos/"+created.ID, admin, dto.UpdateFindingRequest{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_GetFinding(t *testing.T) {
	app := newBackendApp(t)
	paola := login(t, app, "usuario@empresa1.com", "pass", 1)
	editor := login(t, app, "editor@empresa2.com", "abcd", 2)

	resp := call(t, app, http.MethodGet, "/api/hallazgos/218659943", paola, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var f dto.FindingPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&f))
	assert.Equal(t, "Acuario", f.Zone)
	assert.Equal(t, int64(3), f.OwnerUserID)

	// Hallazgo de Javier: misma empresa pero no es de Paola.
	resp = call(t, app, http.MethodGet, "/api/hallazgos/218662660", paola, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/hallazgos/218659943", editor, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "otra empresa")
}

func TestRouter_UserAdministration(t *testing.T) {
	app := newBackendApp(t)
	admin := login(t, app, "admin@empresa1.com", "1234", 1)
	paola := login(t, app, "usuario@empresa1.com", "pass", 1)
	in := dto.CreateUserRequest{Name: "Ana", LastName: "Ruiz", Email: "ana@empresa1.com", Password: "secreto"}

	resp := call(t, app, http.MethodPost, "/api/usuarios", paola, in)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/usuarios", admin, in)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/usuarios", admin, in)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = call(t, app, http.MethodDelete, "/api/usuarios/abc", admin, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// El perfil propio no requiere rol de administrador.
	resp = call(t, app, http.MethodPut, "/api/usuarios/profile", paola, dto.UpdateProfileRequest{LastName: "Vargas Ruiz"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.UserPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Vargas Ruiz", out.LastName)

	resp = call(t, app, http.MethodDelete, "/api/usuarios/4", admin, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Desactivado: ya no entra.
	resp = call(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "usuario2@empresa1.com", Password: "pass", CompanyID: 1})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRouter_GetUserAndStatus(t *testing.T) {
	app := newBackendApp(t)
	admin := login(t, app, "admin@empresa1.com", "1234", 1)
	paola := login(t, app, "usuario@empresa1.com", "pass", 1)

	resp := call(t, app, http.MethodGet, "/api/usuarios/3", admin, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var u dto.UserPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&u))
	assert.Equal(t, "usuario", u.Role)
	assert.Equal(t, int64(1), u.CompanyID)

	resp = call(t, app, http.MethodGet, "/api/usuarios/2", admin, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "otra empresa")

	resp = call(t, app, http.MethodGet, "/api/usuarios/1", paola, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodPut, "/api/usuarios/1/estado", admin, dto.SetUserStatusRequest{Active: false})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "no puede desactivarse a sí mismo")

	resp = call(t, app, http.MethodPut, "/api/usuarios/4/estado", admin, dto.SetUserStatusRequest{Active: false})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&u))
	assert.False(t, u.Active)

	resp = call(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "usuario2@empresa1.com", Password: "pass", CompanyID: 1})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodPut, "/api/usuarios/4/estado", admin, dto.SetUserStatusRequest{Active: true})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login(t, app, "usuario2@empresa1.com", "pass", 1)
}

func TestRouter_CloseAll(t *testing.T) {
	app := newBackendApp(t)
	paola := login(t, app, "usuario@empresa1.com", "pass", 1)
	body := dto.CloseAllFindingsRequest{IDs: []string{"218659943", "219581583"}, Comment: "Cierre de la ronda mensual"}

	resp := call(t, app, http.MethodPut, "/api/hallazgos/close-all", paola,
		dto.CloseAllFindingsRequest{IDs: []string{"218659943", "220123456"}, Comment: body.Comment})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodPut, "/api/hallazgos/close-all", paola, body)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.CloseAllFindingsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 2, out.Closed)
	require.Len(t, out.Findings, 2)
	assert.Equal(t, "cerrado", out.Findings[1].State)
}

func TestRouter_ChangePassword(t *testing.T) {
	app := newBackendApp(t)
	paola := login(t, app, "usuario@empresa1.com", "pass", 1)

	resp := call(t, app, http.MethodPut, "/api/usuarios/profile", paola, dto.ChangePasswordRequest{CurrentPassword: "otra", Password: "nueva123"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var e dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.Equal(t, apphttp.CodeWrongPassword, e.Code)

	resp = call(t, app, http.MethodPut, "/api/usuarios/profile", paola, dto.ChangePasswordRequest{CurrentPassword: "pass", Password: "nueva123"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login(t, app, "usuario@empresa1.com", "nueva123", 1)
}

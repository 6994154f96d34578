package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lxhallazgos/internal/application/session"
	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var errBackend = errors.New("backend caído")

// fakeKV almacenamiento en memoria con fallos inyectables por clave.
type fakeKV struct {
	mu      sync.Mutex
	data    map[string]string
	failSet map[string]bool
	failGet bool
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, failSet: map[string]bool{}}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return "", false, errBackend
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet[key] {
		return errBackend
	}
	f.data[key] = value
	return nil
}

func (f *fakeKV) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeKV) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

func newStore(kv *fakeKV) *session.Store {
	return session.NewStore(kv, zerolog.Nop())
}

func authenticated() entity.Session {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	company := &entity.Company{ID: 1, Name: "Empresa1"}
	return entity.Session{
		Token:     "tok-1",
		User:      &entity.User{ID: 3, CompanyID: 1, Name: "Paola", Email: "usuario@empresa1.com", Role: entity.RoleUsuario, Active: true},
		Company:   company,
		LoginTime: &now,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Save / Load
// ──────────────────────────────────────────────────────────────────────────────

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	st := newStore(kv)

	in := authenticated()
	require.True(t, st.Save(ctx, in))

	out := st.Load(ctx)
	assert.True(t, out.IsAuthenticated())
	assert.Equal(t, "tok-1", out.Token)
	assert.Equal(t, int64(3), out.User.ID)
	assert.Equal(t, entity.RoleUsuario, out.User.Role)
	require.NotNil(t, out.Company)
	assert.Equal(t, "Empresa1", out.Company.Name)
	require.NotNil(t, out.LoginTime)
	assert.True(t, in.LoginTime.Equal(*out.LoginTime))
	assert.Nil(t, out.RememberedCompany)
}

func TestSave_SinUsuarioNoEscribe(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	st := newStore(kv)

	s := authenticated()
	s.User = nil
	assert.False(t, st.Save(ctx, s))
	assert.False(t, kv.has(session.KeyAuthToken))
	assert.False(t, kv.has(session.KeyUserSession))
}

func TestSave_FalloDelBlobRetiraElToken(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	kv.failSet[session.KeyUserSession] = true
	st := newStore(kv)

	assert.False(t, st.Save(ctx, authenticated()))
	assert.False(t, kv.has(session.KeyAuthToken), "no debe quedar un token sin blob")
	assert.False(t, st.Load(ctx).IsAuthenticated())
}

func TestLoad_BlobCorruptoSeBorra(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	kv.data[session.KeyAuthToken] = "tok"
	kv.data[session.KeyUserSession] = "{no es json"
	st := newStore(kv)

	out := st.Load(ctx)
	assert.False(t, out.IsAuthenticated())
	assert.Empty(t, out.Token, "sin sesión a medio formar")
	assert.False(t, kv.has(session.KeyUserSession))
	assert.True(t, kv.has(session.KeyAuthToken), "el token no es JSON y no se toca")
}

func TestLoad_BlobNoAutenticado(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	kv.data[session.KeyAuthToken] = "tok"
	kv.data[session.KeyUserSession] = `{"currentUser":{"id":1,"rol":"admin"},"isAuthenticated":false}`
	st := newStore(kv)

	assert.False(t, st.Load(ctx).IsAuthenticated())

	kv.data[session.KeyUserSession] = `{"isAuthenticated":true}`
	assert.False(t, st.Load(ctx).IsAuthenticated(), "sin currentUser no hay sesión")
}

func TestLoad_SinTokenNoHaySesion(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	st := newStore(kv)
	require.True(t, st.Save(ctx, authenticated()))
	delete(kv.data, session.KeyAuthToken)

	out := st.Load(ctx)
	assert.False(t, out.IsAuthenticated())
	assert.Nil(t, out.User)
}

func TestLoad_LoginTimeIlegibleQuedaNil(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	kv.data[session.KeyAuthToken] = "tok"
	kv.data[session.KeyUserSession] = `{"currentUser":{"id":1,"rol":"admin"},"isAuthenticated":true,"loginTime":"ayer"}`
	st := newStore(kv)

	out := st.Load(ctx)
	assert.True(t, out.IsAuthenticated())
	assert.Nil(t, out.LoginTime)
}

func TestLoad_BackendCaidoDevuelveVacio(t *testing.T) {
	kv := newFakeKV()
	kv.failGet = true
	out := newStore(kv).Load(context.Background())
	assert.Equal(t, entity.Session{}, out)
}

// ──────────────────────────────────────────────────────────────────────────────
// Empresas
// ──────────────────────────────────────────────────────────────────────────────

func TestRememberForget_IdaYVuelta(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	st := newStore(kv)

	c := &entity.Company{ID: 2, Name: "Empresa2", TaxID: "900123", Active: true}
	require.True(t, st.RememberCompany(ctx, c))
	got := st.Load(ctx).RememberedCompany
	require.NotNil(t, got)
	assert.Equal(t, *c, *got)

	assert.True(t, st.ForgetCompany(ctx))
	assert.Nil(t, st.Load(ctx).RememberedCompany)
	assert.True(t, st.ForgetCompany(ctx), "idempotente")
}

func TestCompany_FormatoNormalizadoAntiguo(t *testing.T) {
	kv := newFakeKV()
	kv.data[session.KeyRememberedCompany] = `{"empresa_id":3,"nombre":"Empresa3"}`
	got := newStore(kv).Load(context.Background()).RememberedCompany
	require.NotNil(t, got)
	assert.Equal(t, int64(3), got.ID)
}

func TestCompany_SinIDSeDescarta(t *testing.T) {
	kv := newFakeKV()
	kv.data[session.KeyCurrentCompany] = `{"nombre":"Fantasma"}`
	st := newStore(kv)

	assert.Nil(t, st.Load(context.Background()).CurrentCompany)
	assert.False(t, kv.has(session.KeyCurrentCompany))
	assert.False(t, st.SaveCurrentCompany(context.Background(), &entity.Company{Name: "x"}))
}

func TestClear_ConservaEmpresaRecordada(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	st := newStore(kv)

	require.True(t, st.Save(ctx, authenticated()))
	require.True(t, st.SaveCurrentCompany(ctx, &entity.Company{ID: 1, Name: "Empresa1"}))
	require.True(t, st.RememberCompany(ctx, &entity.Company{ID: 1, Name: "Empresa1"}))

	assert.True(t, st.Clear(ctx))
	out := st.Load(ctx)
	assert.False(t, out.IsAuthenticated())
	assert.Nil(t, out.CurrentCompany)
	require.NotNil(t, out.RememberedCompany)

	assert.True(t, st.Purge(ctx))
	assert.Nil(t, st.Load(ctx).RememberedCompany)
}

// ──────────────────────────────────────────────────────────────────────────────
// Actualizaciones parciales
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateToken_ActualizaAmbasClaves(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	st := newStore(kv)
	require.True(t, st.Save(ctx, authenticated()))

	require.True(t, st.UpdateToken(ctx, "tok-2"))
	assert.Equal(t, "tok-2", st.Token(ctx))
	assert.Contains(t, kv.data[session.KeyUserSession], `"token":"tok-2"`)
	assert.False(t, st.UpdateToken(ctx, ""))
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	st := newStore(kv)

	u := &entity.User{ID: 3, CompanyID: 1, Name: "Paola", Role: entity.RoleEditor, Zone: "Metro"}
	assert.False(t, st.UpdateUser(ctx, u), "sin sesión no hay blob que actualizar")

	require.True(t, st.Save(ctx, authenticated()))
	require.True(t, st.UpdateUser(ctx, u))

	out := st.Load(ctx)
	assert.Equal(t, entity.RoleEditor, out.User.Role)
	assert.Equal(t, "Metro", out.User.Zone)
	assert.NotNil(t, out.LoginTime, "la hora de login se conserva")
}

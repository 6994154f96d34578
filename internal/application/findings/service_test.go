package findings_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lxhallazgos/internal/application/dto"
	"github.com/jhoicas/lxhallazgos/internal/application/findings"
	"github.com/jhoicas/lxhallazgos/internal/application/session"
	"github.com/jhoicas/lxhallazgos/internal/domain"
	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
	"github.com/jhoicas/lxhallazgos/internal/infrastructure/storage"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// recordingGateway registra las llamadas recibidas.
type recordingGateway struct {
	calls       []string
	lastComment string
	lastReason  string
	lastCreate  dto.CreateFindingRequest
	lastIDs     []string
	stored      *entity.Finding
	others      map[string]*entity.Finding
}

func (g *recordingGateway) Get(_ context.Context, id string) (*entity.Finding, error) {
	g.calls = append(g.calls, "get")
	f := g.others[id]
	if g.stored != nil && g.stored.ID == id {
		f = g.stored
	}
	if f == nil {
		return nil, domain.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (g *recordingGateway) Create(_ context.Context, in dto.CreateFindingRequest) (*entity.Finding, error) {
	g.calls = append(g.calls, "create")
	g.lastCreate = in
	return &entity.Finding{ID: "nuevo", Project: in.Project, Evaluator: in.Evaluator, State: entity.FindingPending}, nil
}

func (g *recordingGateway) Update(_ context.Context, id string, _ dto.UpdateFindingRequest) (*entity.Finding, error) {
	g.calls = append(g.calls, "update")
	return &entity.Finding{ID: id}, nil
}

func (g *recordingGateway) Close(_ context.Context, id, comment string) (*entity.Finding, error) {
	g.calls = append(g.calls, "close")
	g.lastComment = comment
	return &entity.Finding{ID: id, State: entity.FindingClosed, CloseComment: comment}, nil
}

func (g *recordingGateway) Reopen(_ context.Context, id, reason string) (*entity.Finding, error) {
	g.calls = append(g.calls, "reopen")
	g.lastReason = reason
	return &entity.Finding{ID: id, State: entity.FindingPending, ReopenReason: reason}, nil
}

func (g *recordingGateway) Delete(context.Context, string) error {
	g.calls = append(g.calls, "delete")
	return nil
}

func (g *recordingGateway) CloseAll(_ context.Context, ids []string, comment string) ([]*entity.Finding, error) {
	g.calls = append(g.calls, "close-all")
	g.lastIDs = ids
	g.lastComment = comment
	out := make([]*entity.Finding, 0, len(ids))
	for _, id := range ids {
		out = append(out, &entity.Finding{ID: id, State: entity.FindingClosed, CloseComment: comment})
	}
	return out, nil
}

func serviceAs(t *testing.T, u *entity.User) (*findings.Service, *recordingGateway) {
	t.Helper()
	st := session.NewStore(storage.NewMemory(), zerolog.Nop())
	if u != nil {
		now := time.Now()
		require.True(t, st.Save(context.Background(), entity.Session{Token: "tok", User: u, LoginTime: &now}))
	}
	gw := &recordingGateway{}
	return findings.NewService(st, gw, zerolog.Nop()), gw
}

func open(owner int64, zone string) *entity.Finding {
	return &entity.Finding{ID: "218659943", CompanyID: 1, OwnerUserID: owner, Zone: zone, State: entity.FindingPending}
}

func strPtr(s string) *string { return &s }

var (
	admin   = &entity.User{ID: 1, CompanyID: 1, Role: entity.RoleAdmin, Active: true}
	editor  = &entity.User{ID: 2, CompanyID: 1, Role: entity.RoleEditor, Zone: "Metro", Active: true}
	usuario = &entity.User{ID: 3, CompanyID: 1, Role: entity.RoleUsuario, Active: true}
	viewer  = &entity.User{ID: 5, CompanyID: 1, Role: entity.RoleVisualizador, Active: true}
)

// ──────────────────────────────────────────────────────────────────────────────
// Compuerta de autorización
// ──────────────────────────────────────────────────────────────────────────────

func TestSinSesion_NoAutorizado(t *testing.T) {
	svc, gw := serviceAs(t, nil)
	_, err := svc.Create(context.Background(), dto.CreateFindingRequest{Project: "Alpha", Evaluator: "Ana"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, gw.calls)
}

func TestCreate_DenegadoNoLlamaAlBackend(t *testing.T) {
	for _, u := range []*entity.User{usuario, viewer} {
		svc, gw := serviceAs(t, u)
		_, err := svc.Create(context.Background(), dto.CreateFindingRequest{Project: "Alpha", Evaluator: "Ana"})
		assert.ErrorIs(t, err, domain.ErrForbidden, string(u.Role))
		assert.Empty(t, gw.calls)
	}
}

func TestCreate_CamposObligatorios(t *testing.T) {
	svc, gw := serviceAs(t, editor)
	_, err := svc.Create(context.Background(), dto.CreateFindingRequest{Project: "  ", Evaluator: "Ana"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, gw.calls)

	f, err := svc.Create(context.Background(), dto.CreateFindingRequest{Project: " Alpha ", Evaluator: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "nuevo", f.ID)
	assert.Equal(t, "Alpha", gw.lastCreate.Project)
}

func TestUpdate_DenegadoFueraDeZona(t *testing.T) {
	svc, gw := serviceAs(t, editor)
	_, err := svc.Update(context.Background(), open(9, "Centro"), dto.UpdateFindingRequest{Observations: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, gw.calls)

	_, err = svc.Update(context.Background(), open(9, "Metro"), dto.UpdateFindingRequest{Observations: strPtr("x")})
	require.NoError(t, err)
	assert.Equal(t, []string{"update"}, gw.calls)
}

func TestUpdate_EditorNoSacaDeSuZona(t *testing.T) {
	svc, gw := serviceAs(t, editor)
	ctx := context.Background()

	_, err := svc.Update(ctx, open(9, "Metro"), dto.UpdateFindingRequest{Zone: strPtr("Centro")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, gw.calls)

	_, err = svc.Update(ctx, open(9, "Metro"), dto.UpdateFindingRequest{Zone: strPtr(" Metro ")})
	require.NoError(t, err)

	svc, _ = serviceAs(t, admin)
	_, err = svc.Update(ctx, open(9, "Metro"), dto.UpdateFindingRequest{Zone: strPtr("Centro")})
	assert.NoError(t, err, "admin mueve entre zonas")
}

func TestUpdate_NoCierraNiVaciaCampos(t *testing.T) {
	svc, gw := serviceAs(t, admin)
	ctx := context.Background()

	_, err := svc.Update(ctx, open(3, "Metro"), dto.UpdateFindingRequest{State: strPtr("cerrado")})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.Update(ctx, open(3, "Metro"), dto.UpdateFindingRequest{State: strPtr("archivado")})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.Update(ctx, open(3, "Metro"), dto.UpdateFindingRequest{Project: strPtr(" ")})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.Update(ctx, nil, dto.UpdateFindingRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, gw.calls)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cierre y reapertura
// ──────────────────────────────────────────────────────────────────────────────

func TestClose_ComentarioMinimo(t *testing.T) {
	svc, gw := serviceAs(t, usuario)
	ctx := context.Background()
	f := open(3, "Acuario")

	_, err := svc.Close(ctx, f, "  corto   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, gw.calls)

	out, err := svc.Close(ctx, f, "  Se corrigió la baranda  ")
	require.NoError(t, err)
	assert.Equal(t, entity.FindingClosed, out.State)
	assert.Equal(t, "Se corrigió la baranda", gw.lastComment)
}

func TestClose_CuentaCaracteresNoBytes(t *testing.T) {
	svc, _ := serviceAs(t, usuario)
	_, err := svc.Close(context.Background(), open(3, ""), strings.Repeat("ñ", 10))
	assert.NoError(t, err)
}

func TestClose_AjenoDenegado(t *testing.T) {
	svc, gw := serviceAs(t, usuario)
	_, err := svc.Close(context.Background(), open(4, "Oeste 1"), "comentario suficiente")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, gw.calls)
}

func TestReopen(t *testing.T) {
	svc, gw := serviceAs(t, usuario)
	ctx := context.Background()
	closed := &entity.Finding{ID: "218662660", OwnerUserID: 4, Zone: "Oeste 1", State: entity.FindingClosed}

	_, err := svc.Reopen(ctx, closed, "motivo suficiente")
	assert.ErrorIs(t, err, domain.ErrForbidden, "ni dueño ni quien cerró")

	by := int64(3)
	closed.ClosedByUserID = &by
	_, err = svc.Reopen(ctx, closed, "breve")
	assert.ErrorIs(t, err, domain.ErrValidation)

	out, err := svc.Reopen(ctx, closed, "Reincidencia detectada")
	require.NoError(t, err)
	assert.Equal(t, entity.FindingPending, out.State)
	assert.Equal(t, []string{"reopen"}, gw.calls)
	assert.Equal(t, "Reincidencia detectada", gw.lastReason)
}

func TestDelete_SoloAdmin(t *testing.T) {
	svc, gw := serviceAs(t, editor)
	assert.ErrorIs(t, svc.Delete(context.Background(), open(2, "Metro")), domain.ErrForbidden)
	assert.Empty(t, gw.calls)

	svc, gw = serviceAs(t, admin)
	require.NoError(t, svc.Delete(context.Background(), open(2, "Metro")))
	assert.Equal(t, []string{"delete"}, gw.calls)
}

func TestCapabilities_DeLaSesion(t *testing.T) {
	svc, _ := serviceAs(t, editor)
	caps := svc.Capabilities(context.Background(), open(9, "Metro"))
	assert.True(t, caps.View)
	assert.True(t, caps.Edit)
	assert.True(t, caps.Close)
	assert.False(t, caps.Delete)

	anon, _ := serviceAs(t, nil)
	assert.False(t, anon.Capabilities(context.Background(), open(9, "Metro")).View)
}

func TestGet_FiltraLoQueNoPuedeVer(t *testing.T) {
	svc, gw := serviceAs(t, usuario)
	gw.stored = open(99, "Acuario")

	_, err := svc.Get(context.Background(), "218659943")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	gw.stored = open(usuario.ID, "Acuario")
	f, err := svc.Get(context.Background(), "218659943")
	require.NoError(t, err)
	assert.Equal(t, usuario.ID, f.OwnerUserID)

	_, err = svc.Get(context.Background(), "otro")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGet_SinID(t *testing.T) {
	svc, gw := serviceAs(t, admin)
	_, err := svc.Get(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, gw.calls)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cierre en bloque
// ──────────────────────────────────────────────────────────────────────────────

func closeAllGateway(gw *recordingGateway) {
	gw.others = map[string]*entity.Finding{
		"h-metro":   {ID: "h-metro", CompanyID: 1, OwnerUserID: 9, Zone: "Metro", State: entity.FindingPending},
		"h-metro-2": {ID: "h-metro-2", CompanyID: 1, OwnerUserID: 9, Zone: "Metro", State: entity.FindingInProgress},
		"h-centro":  {ID: "h-centro", CompanyID: 1, OwnerUserID: 9, Zone: "Centro", State: entity.FindingPending},
		"h-cerrado": {ID: "h-cerrado", CompanyID: 1, OwnerUserID: 9, Zone: "Metro", State: entity.FindingClosed},
	}
}

func TestCloseAll(t *testing.T) {
	svc, gw := serviceAs(t, editor)
	closeAllGateway(gw)

	out, err := svc.CloseAll(context.Background(), []string{"h-metro", " h-metro-2 ", "h-metro"}, "  Cierre de la ronda mensual ")
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, []string{"h-metro", "h-metro-2"}, gw.lastIDs, "sin repetidos ni espacios")
	assert.Equal(t, "Cierre de la ronda mensual", gw.lastComment)
	assert.Equal(t, []string{"get", "get", "close-all"}, gw.calls)
}

func TestCloseAll_UnoDenegadoNoCierraNinguno(t *testing.T) {
	for _, id := range []string{"h-centro", "h-cerrado"} {
		t.Run(id, func(t *testing.T) {
			svc, gw := serviceAs(t, editor)
			closeAllGateway(gw)

			_, err := svc.CloseAll(context.Background(), []string{"h-metro", id}, "Cierre de la ronda mensual")
			assert.ErrorIs(t, err, domain.ErrForbidden)
			assert.NotContains(t, gw.calls, "close-all")
		})
	}
}

func TestCloseAll_Validaciones(t *testing.T) {
	svc, gw := serviceAs(t, admin)
	closeAllGateway(gw)
	ctx := context.Background()

	_, err := svc.CloseAll(ctx, []string{"h-metro"}, "  corto  ")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.CloseAll(ctx, []string{" ", ""}, "Cierre de la ronda mensual")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, gw.calls)

	_, err = svc.CloseAll(ctx, []string{"no-existe"}, "Cierre de la ronda mensual")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotContains(t, gw.calls, "close-all")
}

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jhoicas/lxhallazgos/internal/application/dto"
	"github.com/jhoicas/lxhallazgos/internal/application/ports"
	"github.com/jhoicas/lxhallazgos/internal/domain"
	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
)

var _ ports.FindingsGateway = (*Findings)(nil)

// Rutas de hallazgos.
const (
	PathFindings         = "/api/hallazgos"
	PathFindingsCloseAll = "/api/hallazgos/close-all"
)

// Findings adaptador de hallazgos sobre el transporte autenticado.
type Findings struct {
	t *Transport
}

// NewFindings construye el adaptador.
func NewFindings(t *Transport) *Findings {
	return &Findings{t: t}
}

func findingPath(id, suffix string) string {
	return PathFindings + "/" + url.PathEscape(id) + suffix
}

func (f *Findings) send(ctx context.Context, method, path string, in any) (*entity.Finding, error) {
	var out dto.FindingPayload
	if err := f.t.Do(ctx, method, path, in, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, domain.ErrInvalidResponse
	}
	return out.ToEntity(), nil
}

func (f *Findings) Get(ctx context.Context, id string) (*entity.Finding, error) {
	return f.send(ctx, http.MethodGet, findingPath(id, ""), nil)
}

func (f *Findings) Create(ctx context.Context, in dto.CreateFindingRequest) (*entity.Finding, error) {
	return f.send(ctx, http.MethodPost, PathFindings, in)
}

func (f *Findings) Update(ctx context.Context, id string, in dto.UpdateFindingRequest) (*entity.Finding, error) {
	return f.send(ctx, http.MethodPut, findingPath(id, ""), in)
}

func (f *Findings) Close(ctx context.Context, id, comment string) (*entity.Finding, error) {
	return f.send(ctx, http.MethodPut, findingPath(id, "/close"), dto.CloseFindingRequest{Comment: comment})
}

func (f *Findings) Reopen(ctx context.Context, id, reason string) (*entity.Finding, error) {
	return f.send(ctx, http.MethodPut, findingPath(id, "/reopen"), dto.ReopenFindingRequest{Reason: reason})
}

func (f *Findings) Delete(ctx context.Context, id string) error {
	return f.t.Do(ctx, http.MethodDelete, findingPath(id, ""), nil, nil)
}

func (f *Findings) CloseAll(ctx context.Context, ids []string, comment string) ([]*entity.Finding, error) {
	var out dto.CloseAllFindingsResponse
	if err := f.t.Do(ctx, http.MethodPut, PathFindingsCloseAll, dto.CloseAllFindingsRequest{IDs: ids, Comment: comment}, &out); err != nil {
		return nil, err
	}
	list := make([]*entity.Finding, 0, len(out.Findings))
	for _, p := range out.Findings {
		if p == nil || p.ID == "" {
			return nil, domain.ErrInvalidResponse
		}
		list = append(list, p.ToEntity())
	}
	return list, nil
}

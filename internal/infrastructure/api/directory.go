package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jhoicas/lxhallazgos/internal/application/dto"
	"github.com/jhoicas/lxhallazgos/internal/application/ports"
	"github.com/jhoicas/lxhallazgos/internal/domain"
	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
	"github.com/jhoicas/lxhallazgos/pkg/nit"
)

var _ ports.CompanyDirectory = (*Directory)(nil)

// PathCompanies directorio público de empresas.
const PathCompanies = "/api/empresas/public"

// Directory resuelve empresas contra el directorio público.
type Directory struct {
	client *Client
}

// NewDirectory construye el adaptador.
func NewDirectory(client *Client) *Directory {
	return &Directory{client: client}
}

// List devuelve todas las empresas publicadas.
func (d *Directory) List(ctx context.Context) ([]*entity.Company, error) {
	var payload []dto.CompanyPayload
	if err := d.client.Do(ctx, http.MethodGet, PathCompanies, "", nil, &payload); err != nil {
		if errors.Is(err, domain.ErrTransport) || errors.Is(err, domain.ErrInvalidResponse) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: directorio no disponible: %w", domain.ErrTransport, err)
	}
	out := make([]*entity.Company, 0, len(payload))
	for i := range payload {
		if c := payload[i].ToEntity(); c != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

// Lookup busca por ID exacto, nombre sin distinguir mayúsculas o NIT (con o sin puntos y guion).
// Gana la primera coincidencia en el orden del directorio.
func (d *Directory) Lookup(ctx context.Context, input string) (*entity.Company, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, domain.ErrValidation
	}
	list, err := d.List(ctx)
	if err != nil {
		return nil, err
	}
	id, idErr := strconv.ParseInt(input, 10, 64)
	fold := cases.Fold()
	folded := fold.String(input)
	for _, c := range list {
		if (idErr == nil && c.ID == id) || fold.String(c.Name) == folded || (c.TaxID != "" && (c.TaxID == input || nit.Equal(c.TaxID, input))) {
			return c, nil
		}
	}
	return nil, domain.ErrCompanyNotFound
}

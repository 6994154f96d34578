package dto

import "github.com/jhoicas/lxhallazgos/internal/domain/entity"

// CompanyPayload forma JSON de una empresa, tanto en el directorio público como en el
// almacenamiento local (currentCompany, rememberedCompany y userSession.empresa).
type CompanyPayload struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"empresa_id,omitempty"` // formato normalizado antiguo: {empresa_id, nombre, id}
	Name      string `json:"nombre"`
	TaxID     string `json:"nit,omitempty"`
}

// CompanyFromEntity convierte la entidad al formato JSON.
func CompanyFromEntity(c *entity.Company) *CompanyPayload {
	if c == nil {
		return nil
	}
	return &CompanyPayload{ID: c.ID, Name: c.Name, TaxID: c.TaxID}
}

// ToEntity convierte el payload a entidad. Devuelve nil si no hay un ID utilizable.
func (p *CompanyPayload) ToEntity() *entity.Company {
	if p == nil {
		return nil
	}
	id := p.ID
	if id == 0 {
		id = p.CompanyID
	}
	if id <= 0 {
		return nil
	}
	return &entity.Company{ID: id, Name: p.Name, TaxID: p.TaxID, Active: true}
}

// CompanyList convierte una lista de entidades.
func CompanyList(list []*entity.Company) []CompanyPayload {
	out := make([]CompanyPayload, 0, len(list))
	for _, c := range list {
		if c == nil {
			continue
		}
		out = append(out, *CompanyFromEntity(c))
	}
	return out
}

package entity

// Company representa una empresa/tenant. Una vez validada para una sesión es inmutable.
type Company struct {
	ID     int64
	Name   string
	TaxID  string // NIT; vacío si el directorio no lo publica
	Active bool
}

// Clone copia la empresa.
func (c *Company) Clone() *Company {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// SameCompany compara por ID, tolerando nil.
func SameCompany(a, b *Company) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

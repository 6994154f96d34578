package dto

import "github.com/jhoicas/lxhallazgos/internal/domain/entity"

// UserPayload salida de un usuario (sin password), igual en la API y en userSession.currentUser.
type UserPayload struct {
	ID        int64           `json:"id"`
	Name      string          `json:"nombre"`
	LastName  string          `json:"apellido,omitempty"`
	Email     string          `json:"correo"`
	Role      string          `json:"rol"`
	CanEdit   bool            `json:"puede_editar"`
	Zone      string          `json:"zona,omitempty"`
	CompanyID int64           `json:"empresa_id"`
	Company   *CompanyPayload `json:"empresa,omitempty"`
	Active    bool            `json:"activo"`
}

// UserFromEntity convierte la entidad; company es opcional.
func UserFromEntity(u *entity.User, company *entity.Company) *UserPayload {
	if u == nil {
		return nil
	}
	return &UserPayload{
		ID:        u.ID,
		Name:      u.Name,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      string(u.Role),
		CanEdit:   u.CanEdit,
		Zone:      u.Zone,
		CompanyID: u.CompanyID,
		Company:   CompanyFromEntity(company),
		Active:    u.Active,
	}
}

// ToEntity convierte el payload a entidad. Un rol desconocido se conserva tal cual:
// el motor de autorización lo trata como sin privilegios.
func (p *UserPayload) ToEntity() *entity.User {
	if p == nil {
		return nil
	}
	companyID := p.CompanyID
	if companyID == 0 && p.Company != nil {
		companyID = p.Company.ID
	}
	return &entity.User{
		ID:        p.ID,
		CompanyID: companyID,
		Name:      p.Name,
		LastName:  p.LastName,
		Email:     p.Email,
		Role:      entity.Role(p.Role),
		CanEdit:   p.CanEdit,
		Zone:      p.Zone,
		Active:    p.Active,
	}
}

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en el backend).
type CreateUserRequest struct {
	Name     string `json:"nombre"`
	LastName string `json:"apellido"`
	Email    string `json:"correo"`
	Password string `json:"password"`
	Role     string `json:"rol"`
	CanEdit  bool   `json:"puede_editar"`
	Zone     string `json:"zona,omitempty"`
}

// UpdateUserRequest entrada para actualizar un usuario. Password vacío = sin cambio.
type UpdateUserRequest struct {
	Name     string `json:"nombre"`
	LastName string `json:"apellido"`
	Email    string `json:"correo"`
	Role     string `json:"rol"`
	CanEdit  bool   `json:"puede_editar"`
	Active   *bool  `json:"estado,omitempty"`
	Zone     string `json:"zona,omitempty"`
	Password string `json:"password,omitempty"`
}

// UpdateProfileRequest datos que el propio usuario puede cambiar. Si viene CurrentPassword
// el backend la verifica antes de aplicar el cambio.
type UpdateProfileRequest struct {
	Name            string `json:"nombre"`
	LastName        string `json:"apellido"`
	Email           string `json:"correo"`
	Password        string `json:"password,omitempty"`
	CurrentPassword string `json:"currentPassword,omitempty"`
}

// ChangePasswordRequest cambio de contraseña propio (mismo endpoint que el perfil).
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	Password        string `json:"password"`
}

// SetUserStatusRequest activa o desactiva un usuario.
type SetUserStatusRequest struct {
	Active bool `json:"estado"`
}

package entity

// Role rol de un usuario dentro de su empresa.
type Role string

// Roles válidos para User.
const (
	RoleSuperAdmin   Role = "super_admin"
	RoleAdmin        Role = "admin"
	RoleEditor       Role = "editor"
	RoleVisualizador Role = "visualizador"
	RoleUsuario      Role = "usuario"
)

// privilegeLevels es la única tabla de orden de privilegios; todo chequeo de rol pasa por Level.
var privilegeLevels = map[Role]int{
	RoleSuperAdmin:   5,
	RoleAdmin:        4,
	RoleEditor:       3,
	RoleVisualizador: 2,
	RoleUsuario:      1,
}

var roleDisplayNames = map[Role]string{
	RoleSuperAdmin:   "Super Administrador",
	RoleAdmin:        "Administrador",
	RoleEditor:       "Editor",
	RoleVisualizador: "Visualizador",
	RoleUsuario:      "Usuario",
}

// ParseRole convierte el texto del backend en un Role conocido.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := privilegeLevels[r]
	return r, ok
}

// Level nivel de privilegio (0 para roles desconocidos).
func (r Role) Level() int {
	return privilegeLevels[r]
}

// Valid informa si el rol pertenece a la enumeración.
func (r Role) Valid() bool {
	return r.Level() > 0
}

// AtLeast informa si el rol tiene al menos el privilegio de other.
func (r Role) AtLeast(other Role) bool {
	return r.Valid() && r.Level() >= other.Level()
}

// IsAdmin admin o super_admin.
func (r Role) IsAdmin() bool {
	return r.AtLeast(RoleAdmin)
}

// IsSuperAdmin solo super_admin.
func (r Role) IsSuperAdmin() bool {
	return r.AtLeast(RoleSuperAdmin)
}

// DisplayName nombre legible del rol.
func (r Role) DisplayName() string {
	if name, ok := roleDisplayNames[r]; ok {
		return name
	}
	return string(r)
}

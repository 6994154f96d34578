package entity

// User representa un usuario del sistema (pertenece a una Company).
type User struct {
	ID           int64
	CompanyID    int64
	Name         string
	LastName     string
	Email        string
	PasswordHash string // bcrypt; solo lo usa el backend de desarrollo, nunca se serializa
	Role         Role
	CanEdit      bool   // puede_editar
	Zone         string // vacío = sin restricción de zona
	Active       bool
}

// FullName nombre y apellido.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.Name
	}
	return u.Name + " " + u.LastName
}

// HasZone informa si el usuario tiene restricción de zona.
func (u *User) HasZone() bool {
	return u.Zone != ""
}

// Clone copia el usuario sin el hash de contraseña.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	return &c
}

// Package authz calcula qué acciones puede ejecutar un usuario sobre hallazgos y usuarios.
//
// Todas las funciones son puras: no leen red ni almacenamiento y no comparten estado, así
// que el orden de evaluación no altera el resultado. Un usuario nil (o un rol fuera de la
// enumeración) siempre recibe false. El backend aplica su propia autorización; esto es la
// compuerta de la interfaz.
package authz

import "github.com/jhoicas/lxhallazgos/internal/domain/entity"

// zoneMatches sin restricción de zona, o la zona del hallazgo coincide.
func zoneMatches(u *entity.User, f *entity.Finding) bool {
	return !u.HasZone() || f.Zone == u.Zone
}

func owns(u *entity.User, f *entity.Finding) bool {
	return f.OwnerUserID == u.ID
}

func valid(u *entity.User) bool {
	return u != nil && u.Role.Valid()
}

// CanView admin siempre; editor/visualizador por zona o si es suyo; usuario solo los propios.
func CanView(u *entity.User, f *entity.Finding) bool {
	if !valid(u) || f == nil {
		return false
	}
	switch {
	case u.Role.IsAdmin():
		return true
	case u.Role == entity.RoleEditor, u.Role == entity.RoleVisualizador:
		return zoneMatches(u, f) || owns(u, f)
	default:
		return owns(u, f)
	}
}

// CanViewAll roles con visión de listado completo (sujeta a zona para editor/visualizador).
func CanViewAll(u *entity.User) bool {
	if !valid(u) {
		return false
	}
	return u.Role.AtLeast(entity.RoleVisualizador)
}

// CanCreate admin, editor, o usuario con puede_editar.
func CanCreate(u *entity.User) bool {
	if !valid(u) {
		return false
	}
	if u.Role.AtLeast(entity.RoleEditor) {
		return true
	}
	return u.Role == entity.RoleUsuario && u.CanEdit
}

// CanEdit admin siempre (incluso cerrado). El resto nunca sobre cerrados:
// editor por zona, usuario con puede_editar sobre los propios.
func CanEdit(u *entity.User, f *entity.Finding) bool {
	if !valid(u) || f == nil {
		return false
	}
	if u.Role.IsAdmin() {
		return true
	}
	if f.IsClosed() {
		return false
	}
	switch u.Role {
	case entity.RoleEditor:
		return zoneMatches(u, f)
	case entity.RoleUsuario:
		return u.CanEdit && owns(u, f)
	default:
		return false
	}
}

// CanClose solo abiertos: admin, editor por zona, o el dueño.
func CanClose(u *entity.User, f *entity.Finding) bool {
	if !valid(u) || f == nil || f.IsClosed() {
		return false
	}
	if u.Role.IsAdmin() {
		return true
	}
	if u.Role == entity.RoleEditor && zoneMatches(u, f) {
		return true
	}
	return owns(u, f)
}

// CanReopen solo cerrados: admin, editor por zona, el dueño o quien lo cerró.
func CanReopen(u *entity.User, f *entity.Finding) bool {
	if !valid(u) || f == nil || !f.IsClosed() {
		return false
	}
	if u.Role.IsAdmin() {
		return true
	}
	if u.Role == entity.RoleEditor && zoneMatches(u, f) {
		return true
	}
	return owns(u, f) || f.ClosedBy(u.ID)
}

// CanDelete solo admin y super_admin.
func CanDelete(u *entity.User) bool {
	return valid(u) && u.Role.IsAdmin()
}

package authz

import "github.com/jhoicas/lxhallazgos/internal/domain/entity"

// CanManageUsers admin y super_admin.
func CanManageUsers(actor *entity.User) bool {
	return valid(actor) && actor.Role.IsAdmin()
}

// CanCreateUser admin y super_admin.
func CanCreateUser(actor *entity.User) bool {
	return CanManageUsers(actor)
}

// CanUpdateProfile cualquier rol válido sobre sus propios datos y contraseña.
func CanUpdateProfile(actor *entity.User) bool {
	return valid(actor)
}

// CanManageSuperAdmin solo super_admin.
func CanManageSuperAdmin(actor *entity.User) bool {
	return valid(actor) && actor.Role.IsSuperAdmin()
}

// CanEditUser super_admin edita a cualquiera de su empresa; admin a cualquiera salvo super_admin.
func CanEditUser(actor, target *entity.User) bool {
	if !valid(actor) || target == nil || target.CompanyID != actor.CompanyID {
		return false
	}
	switch {
	case actor.Role.IsSuperAdmin():
		return true
	case actor.Role.IsAdmin():
		return target.Role != entity.RoleSuperAdmin
	default:
		return false
	}
}

// CanDeleteUser nunca sobre super_admin ni sobre sí mismo; admin y super_admin dentro de su empresa.
func CanDeleteUser(actor, target *entity.User) bool {
	if !valid(actor) || target == nil || target.Role == entity.RoleSuperAdmin {
		return false
	}
	if !actor.Role.IsAdmin() {
		return false
	}
	return target.ID != actor.ID && target.CompanyID == actor.CompanyID
}

// CanActOnUser super_admin siempre; el resto solo sobre niveles estrictamente menores.
func CanActOnUser(actor, target *entity.User) bool {
	if !valid(actor) || target == nil {
		return false
	}
	if actor.Role.IsSuperAdmin() {
		return true
	}
	return actor.Role.Level() > target.Role.Level()
}

package authz

import "github.com/jhoicas/lxhallazgos/internal/domain/entity"

// FindingCapabilities instantánea de permisos de un usuario sobre un hallazgo, para pintar acciones.
type FindingCapabilities struct {
	View   bool `json:"ver"`
	Edit   bool `json:"editar"`
	Close  bool `json:"cerrar"`
	Reopen bool `json:"reabrir"`
	Delete bool `json:"eliminar"`
}

// Capabilities evalúa todas las acciones sobre f de una vez.
func Capabilities(u *entity.User, f *entity.Finding) FindingCapabilities {
	return FindingCapabilities{
		View:   CanView(u, f),
		Edit:   CanEdit(u, f),
		Close:  CanClose(u, f),
		Reopen: CanReopen(u, f),
		Delete: CanDelete(u) && f != nil,
	}
}

// Permisos administrativos heredados de la aplicación web.

func CanManageForms(u *entity.User) bool       { return CanManageUsers(u) }
func CanViewSystemLogs(u *entity.User) bool    { return CanManageUsers(u) }
func CanExportData(u *entity.User) bool        { return CanManageUsers(u) }
func CanImportData(u *entity.User) bool        { return CanManageUsers(u) }
func CanViewAllStatistics(u *entity.User) bool { return CanManageUsers(u) }

func CanAccessSystemSettings(u *entity.User) bool { return CanManageSuperAdmin(u) }
func CanManageCompany(u *entity.User) bool        { return CanManageSuperAdmin(u) }
func CanManageSystemBackup(u *entity.User) bool   { return CanManageSuperAdmin(u) }

// RolePermissions descripción legible de lo que permite cada rol.
func RolePermissions(r entity.Role) []string {
	switch r {
	case entity.RoleSuperAdmin:
		return []string{
			"Control total del sistema",
			"Gestionar otros super administradores",
			"Ver, crear, editar, cerrar, reabrir y eliminar cualquier hallazgo",
			"Gestionar todos los usuarios",
			"Acceso a configuraciones avanzadas",
		}
	case entity.RoleAdmin:
		return []string{
			"Ver, crear, editar, cerrar, reabrir y eliminar cualquier hallazgo",
			"Gestionar usuarios (excepto super admin)",
			"Crear/eliminar formularios",
		}
	case entity.RoleEditor:
		return []string{
			"Ver hallazgos de su zona",
			"Crear hallazgos",
			"Editar, cerrar y reabrir hallazgos de su zona",
		}
	case entity.RoleVisualizador:
		return []string{"Ver hallazgos de su zona", "Solo lectura"}
	case entity.RoleUsuario:
		return []string{
			"Ver sus hallazgos asignados",
			"Editar sus hallazgos (si tiene permiso)",
			"Cerrar y reabrir sus hallazgos",
		}
	default:
		return nil
	}
}

package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jhoicas/lxhallazgos/internal/application/dto"
	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
)

func newProfileCmd(get appGetter) *cobra.Command {
	var in dto.UpdateProfileRequest
	cmd := &cobra.Command{
		Use:   "perfil",
		Short: "Actualiza los datos propios",
		Long: `Actualiza nombre, apellido, correo o contraseña del usuario de la sesión.
Los campos no indicados se conservan.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			u, err := get().users.UpdateProfile(cmd.Context(), in)
			if err != nil {
				return failure(out, err)
			}
			return report(out, true, fmt.Sprintf("Perfil actualizado: %s <%s>", u.FullName(), u.Email))
		},
	}
	cmd.Flags().StringVar(&in.Name, "nombre", "", "Nombre")
	cmd.Flags().StringVar(&in.LastName, "apellido", "", "Apellido")
	cmd.Flags().StringVar(&in.Email, "correo", "", "Correo")
	cmd.Flags().StringVar(&in.Password, "password", "", "Contraseña nueva (mínimo 6 caracteres)")
	return cmd
}

func newChangePasswordCmd(get appGetter) *cobra.Command {
	var current, next string
	cmd := &cobra.Command{
		Use:   "cambiar-password",
		Short: "Cambia la contraseña propia",
		Long: `Cambia la contraseña del usuario de la sesión. Se exige la contraseña actual;
la nueva debe tener al menos 6 caracteres.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if err := get().users.ChangePassword(cmd.Context(), current, next); err != nil {
				return failure(out, err)
			}
			return report(out, true, "Contraseña actualizada")
		},
	}
	cmd.Flags().StringVar(&current, "actual", "", "Contraseña actual")
	cmd.Flags().StringVar(&next, "nueva", "", "Contraseña nueva (mínimo 6 caracteres)")
	return cmd
}

func newUserCmd(get appGetter) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "usuario",
		Aliases: []string{"usuarios"},
		Short:   "Gestión de usuarios de la empresa (administradores)",
	}
	cmd.AddCommand(
		newUserShowCmd(get),
		newUserCreateCmd(get),
		newUserUpdateCmd(get),
		newUserStatusCmd(get),
		newUserDeactivateCmd(get),
	)
	return cmd
}

func parseUserID(out io.Writer, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, report(out, false, fmt.Sprintf("ID de usuario inválido: %q", raw))
	}
	return id, nil
}

func printUser(w io.Writer, u *entity.User) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", bold(strconv.FormatInt(u.ID, 10)))
	fmt.Fprintf(tw, "Nombre:\t%s\n", u.FullName())
	fmt.Fprintf(tw, "Correo:\t%s\n", u.Email)
	fmt.Fprintf(tw, "Rol:\t%s\n", u.Role.DisplayName())
	fmt.Fprintf(tw, "Puede editar:\t%s\n", yesNo(u.CanEdit))
	if u.Zone != "" {
		fmt.Fprintf(tw, "Zona:\t%s\n", u.Zone)
	}
	fmt.Fprintf(tw, "Activo:\t%s\n", yesNo(u.Active))
	tw.Flush()
}

func newUserShowCmd(get appGetter) *cobra.Command {
	return &cobra.Command{
		Use:   "ver <id>",
		Short: "Muestra un usuario de la empresa",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			id, err := parseUserID(out, args[0])
			if err != nil {
				return err
			}
			u, err := get().users.Get(cmd.Context(), id)
			if err != nil {
				return failure(out, err)
			}
			printUser(out, u)
			return nil
		},
	}
}

func newUserCreateCmd(get appGetter) *cobra.Command {
	var in dto.CreateUserRequest
	cmd := &cobra.Command{
		Use:   "crear",
		Short: "Crea un usuario en la empresa de la sesión",
		Long: `Crea un usuario. El rol puede ser admin, editor, visualizador o usuario
(por defecto usuario); super_admin no se asigna desde el cliente.

Ejemplo:
  hallazgos usuario crear --nombre Ana --apellido Ruiz --correo ana@empresa1.com \
    --password secreto --rol editor --puede-editar --zona Norte`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			u, err := get().users.Create(cmd.Context(), in)
			if err != nil {
				return failure(out, err)
			}
			return report(out, true, fmt.Sprintf("Usuario creado: %s (ID %d, %s)", u.FullName(), u.ID, u.Role.DisplayName()))
		},
	}
	cmd.Flags().StringVar(&in.Name, "nombre", "", "Nombre")
	cmd.Flags().StringVar(&in.LastName, "apellido", "", "Apellido")
	cmd.Flags().StringVar(&in.Email, "correo", "", "Correo")
	cmd.Flags().StringVar(&in.Password, "password", "", "Contraseña (mínimo 6 caracteres)")
	cmd.Flags().StringVar(&in.Role, "rol", "", "Rol: admin, editor, visualizador o usuario")
	cmd.Flags().BoolVar(&in.CanEdit, "puede-editar", false, "Permite editar sus hallazgos")
	cmd.Flags().StringVar(&in.Zone, "zona", "", "Zona")
	return cmd
}

func newUserUpdateCmd(get appGetter) *cobra.Command {
	var patch dto.UpdateUserRequest
	cmd := &cobra.Command{
		Use:   "editar <id>",
		Short: "Modifica los campos indicados de un usuario",
		Long: `Modifica solo los campos cuyas opciones se indiquen; el resto se toma del
usuario actual. Un administrador no puede editar a un Super Admin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, out := get(), cmd.OutOrStdout()
			id, err := parseUserID(out, args[0])
			if err != nil {
				return err
			}
			u, err := a.users.Get(cmd.Context(), id)
			if err != nil {
				return failure(out, err)
			}
			in := dto.UpdateUserRequest{
				Name: u.Name, LastName: u.LastName, Email: u.Email, CanEdit: u.CanEdit, Zone: u.Zone,
			}
			flags := cmd.Flags()
			if flags.Changed("nombre") {
				in.Name = patch.Name
			}
			if flags.Changed("apellido") {
				in.LastName = patch.LastName
			}
			if flags.Changed("correo") {
				in.Email = patch.Email
			}
			if flags.Changed("rol") {
				in.Role = patch.Role
			}
			if flags.Changed("puede-editar") {
				in.CanEdit = patch.CanEdit
			}
			if flags.Changed("zona") {
				in.Zone = patch.Zone
			}
			in.Password = patch.Password
			updated, err := a.users.Update(cmd.Context(), id, in)
			if err != nil {
				return failure(out, err)
			}
			return report(out, true, fmt.Sprintf("Usuario actualizado: %s (%s)", updated.FullName(), updated.Role.DisplayName()))
		},
	}
	cmd.Flags().StringVar(&patch.Name, "nombre", "", "Nombre")
	cmd.Flags().StringVar(&patch.LastName, "apellido", "", "Apellido")
	cmd.Flags().StringVar(&patch.Email, "correo", "", "Correo")
	cmd.Flags().StringVar(&patch.Password, "password", "", "Contraseña nueva (mínimo 6 caracteres)")
	cmd.Flags().StringVar(&patch.Role, "rol", "", "Rol: admin, editor, visualizador o usuario")
	cmd.Flags().BoolVar(&patch.CanEdit, "puede-editar", false, "Permite editar sus hallazgos")
	cmd.Flags().StringVar(&patch.Zone, "zona", "", "Zona")
	return cmd
}

func newUserStatusCmd(get appGetter) *cobra.Command {
	return &cobra.Command{
		Use:       "estado <id> activo|inactivo",
		Short:     "Activa o desactiva un usuario",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"activo", "inactivo"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			id, err := parseUserID(out, args[0])
			if err != nil {
				return err
			}
			var active bool
			switch args[1] {
			case "activo":
				active = true
			case "inactivo":
			default:
				return report(out, false, fmt.Sprintf("Estado inválido: %q (use activo o inactivo)", args[1]))
			}
			u, err := get().users.SetActive(cmd.Context(), id, active)
			if err != nil {
				return failure(out, err)
			}
			verb := "desactivado"
			if u.Active {
				verb = "activado"
			}
			return report(out, true, fmt.Sprintf("Usuario %d %s", u.ID, verb))
		},
	}
}

func newUserDeactivateCmd(get appGetter) *cobra.Command {
	return &cobra.Command{
		Use:     "desactivar <id>",
		Aliases: []string{"eliminar"},
		Short:   "Desactiva un usuario de la empresa",
		Long:    `Desactiva el usuario indicado. No se puede desactivar a uno mismo ni a un Super Admin.`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			id, err := parseUserID(out, args[0])
			if err != nil {
				return err
			}
			if err := get().users.Delete(cmd.Context(), id); err != nil {
				return failure(out, err)
			}
			return report(out, true, fmt.Sprintf("Usuario %d desactivado", id))
		},
	}
}

package cmd

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jhoicas/lxhallazgos/internal/application/dto"
	"github.com/jhoicas/lxhallazgos/internal/domain"
	"github.com/jhoicas/lxhallazgos/internal/domain/authz"
	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
	"github.com/jhoicas/lxhallazgos/internal/infrastructure/api"
)

const msgNoSession = "No hay sesión activa. Inicie sesión con 'hallazgos login'."

func printFinding(w io.Writer, f *entity.Finding) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", bold(f.ID))
	fmt.Fprintf(tw, "Estado:\t%s\n", f.State)
	fmt.Fprintf(tw, "Proyecto:\t%s\n", f.Project)
	fmt.Fprintf(tw, "Evaluador:\t%s\n", f.Evaluator)
	fmt.Fprintf(tw, "Zona:\t%s\n", f.Zone)
	fmt.Fprintf(tw, "Responsable:\t%d\n", f.OwnerUserID)
	if f.ClosedByUserID != nil {
		fmt.Fprintf(tw, "Cerrado por:\t%d\n", *f.ClosedByUserID)
	}
	if f.CloseComment != "" {
		fmt.Fprintf(tw, "Comentario de cierre:\t%s\n", f.CloseComment)
	}
	if f.ReopenReason != "" {
		fmt.Fprintf(tw, "Motivo de reapertura:\t%s\n", f.ReopenReason)
	}
	if !f.InspectedAt.IsZero() {
		fmt.Fprintf(tw, "Inspección:\t%s\n", f.InspectedAt.Format("2006-01-02"))
	}
	tw.Flush()
}

func printCapabilities(w io.Writer, c authz.FindingCapabilities) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ACCIÓN\tPERMITIDA")
	fmt.Fprintf(tw, "ver\t%s\n", allowed(c.View))
	fmt.Fprintf(tw, "editar\t%s\n", allowed(c.Edit))
	fmt.Fprintf(tw, "cerrar\t%s\n", allowed(c.Close))
	fmt.Fprintf(tw, "reabrir\t%s\n", allowed(c.Reopen))
	fmt.Fprintf(tw, "eliminar\t%s\n", allowed(c.Delete))
	tw.Flush()
}

func allowed(b bool) string {
	if b {
		return okText("sí")
	}
	return errText("no")
}

// failure traduce un error de servicio a un mensaje para el usuario.
func failure(w io.Writer, err error) error {
	var ae *api.APIError
	switch {
	case errors.As(err, &ae):
		return report(w, false, ae.Message)
	case errors.Is(err, domain.ErrWrongPassword):
		return report(w, false, "Contraseña actual incorrecta")
	case errors.Is(err, domain.ErrSessionExpired):
		return report(w, false, "Sesión expirada. Por favor inicie sesión nuevamente.")
	case errors.Is(err, domain.ErrUnauthorized):
		return report(w, false, msgNoSession)
	case errors.Is(err, domain.ErrForbidden):
		return report(w, false, "No tiene permisos para realizar esta acción.")
	case errors.Is(err, domain.ErrTransport):
		return report(w, false, domain.LoginMessage(err))
	default:
		return report(w, false, err.Error())
	}
}

func newPermissionsCmd(get appGetter) *cobra.Command {
	var findingID string
	cmd := &cobra.Command{
		Use:   "permisos",
		Short: "Muestra lo que permite el rol actual",
		Long: `Lista los permisos del rol del usuario de la sesión. Con --hallazgo evalúa
además cada acción sobre ese hallazgo.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, out := get(), cmd.OutOrStdout()
			u := a.machine.State().CurrentUser
			if u == nil {
				return report(out, false, msgNoSession)
			}
			fmt.Fprintf(out, "%s (%s)\n", bold(u.Role.DisplayName()), u.Role)
			for _, p := range authz.RolePermissions(u.Role) {
				fmt.Fprintf(out, "  - %s\n", p)
			}
			fmt.Fprintf(out, "Gestionar usuarios: %s\n", allowed(authz.CanManageUsers(u)))
			fmt.Fprintf(out, "Crear hallazgos: %s\n", allowed(authz.CanCreate(u)))
			if findingID == "" {
				return nil
			}
			f, err := a.findings.Get(cmd.Context(), findingID)
			if err != nil {
				return failure(out, err)
			}
			fmt.Fprintf(out, "\nHallazgo %s (%s, zona %s)\n", bold(f.ID), f.State, f.Zone)
			printCapabilities(out, a.findings.Capabilities(cmd.Context(), f))
			return nil
		},
	}
	cmd.Flags().StringVar(&findingID, "hallazgo", "", "ID del hallazgo a evaluar")
	return cmd
}

func newFindingCmd(get appGetter) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hallazgo",
		Aliases: []string{"hallazgos"},
		Short:   "Operaciones sobre hallazgos",
	}
	cmd.AddCommand(
		newFindingShowCmd(get),
		newFindingCreateCmd(get),
		newFindingUpdateCmd(get),
		newFindingCloseCmd(get),
		newFindingCloseAllCmd(get),
		newFindingReopenCmd(get),
		newFindingDeleteCmd(get),
	)
	return cmd
}

func newFindingShowCmd(get appGetter) *cobra.Command {
	return &cobra.Command{
		Use:   "ver <id>",
		Short: "Muestra un hallazgo y las acciones permitidas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, out := get(), cmd.OutOrStdout()
			f, err := a.findings.Get(cmd.Context(), args[0])
			if err != nil {
				return failure(out, err)
			}
			printFinding(out, f)
			fmt.Fprintln(out)
			printCapabilities(out, a.findings.Capabilities(cmd.Context(), f))
			return nil
		},
	}
}

func newFindingCreateCmd(get appGetter) *cobra.Command {
	var in dto.CreateFindingRequest
	cmd := &cobra.Command{
		Use:   "crear",
		Short: "Crea un hallazgo",
		Long: `Crea un hallazgo en la empresa de la sesión. Proyecto y evaluador son obligatorios;
sin --zona se usa la zona del usuario.

Ejemplo:
  hallazgos hallazgo crear --proyecto Acuario --evaluador "Paola Vargas" --zona Norte`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			f, err := get().findings.Create(cmd.Context(), in)
			if err != nil {
				return failure(out, err)
			}
			return report(out, true, fmt.Sprintf("Hallazgo creado: %s", f.ID))
		},
	}
	cmd.Flags().StringVar(&in.Project, "proyecto", "", "Proyecto")
	cmd.Flags().StringVar(&in.Evaluator, "evaluador", "", "Evaluador")
	cmd.Flags().StringVar(&in.Zone, "zona", "", "Zona")
	cmd.Flags().StringVar(&in.Department, "departamento", "", "Departamento")
	cmd.Flags().StringVar(&in.Activity, "actividad", "", "Actividad")
	cmd.Flags().StringVar(&in.Result, "resultado", "", "Resultado")
	cmd.Flags().StringVar(&in.Observations, "observaciones", "", "Observaciones")
	return cmd
}

func newFindingUpdateCmd(get appGetter) *cobra.Command {
	var project, evaluator, zone, department, activity, result, observations, state string
	cmd := &cobra.Command{
		Use:   "editar <id>",
		Short: "Modifica los campos indicados de un hallazgo",
		Long: `Modifica solo los campos cuyas opciones se indiquen. El estado admite
pendiente y en_proceso; para cerrar use 'hallazgo cerrar'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, out := get(), cmd.OutOrStdout()
			var in dto.UpdateFindingRequest
			flags := cmd.Flags()
			set := func(name string, v *string, dst **string) {
				if flags.Changed(name) {
					*dst = v
				}
			}
			set("proyecto", &project, &in.Project)
			set("evaluador", &evaluator, &in.Evaluator)
			set("zona", &zone, &in.Zone)
			set("departamento", &department, &in.Department)
			set("actividad", &activity, &in.Activity)
			set("resultado", &result, &in.Result)
			set("observaciones", &observations, &in.Observations)
			set("estado", &state, &in.State)

			f, err := a.findings.Get(cmd.Context(), args[0])
			if err != nil {
				return failure(out, err)
			}
			if _, err := a.findings.Update(cmd.Context(), f, in); err != nil {
				return failure(out, err)
			}
			return report(out, true, "Hallazgo actualizado")
		},
	}
	cmd.Flags().StringVar(&project, "proyecto", "", "Proyecto")
	cmd.Flags().StringVar(&evaluator, "evaluador", "", "Evaluador")
	cmd.Flags().StringVar(&zone, "zona", "", "Zona")
	cmd.Flags().StringVar(&department, "departamento", "", "Departamento")
	cmd.Flags().StringVar(&activity, "actividad", "", "Actividad")
	cmd.Flags().StringVar(&result, "resultado", "", "Resultado")
	cmd.Flags().StringVar(&observations, "observaciones", "", "Observaciones")
	cmd.Flags().StringVar(&state, "estado", "", "Estado: pendiente o en_proceso")
	return cmd
}

func newFindingCloseCmd(get appGetter) *cobra.Command {
	var comment string
	cmd := &cobra.Command{
		Use:   "cerrar <id>",
		Short: "Cierra un hallazgo con un comentario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, out := get(), cmd.OutOrStdout()
			f, err := a.findings.Get(cmd.Context(), args[0])
			if err != nil {
				return failure(out, err)
			}
			if _, err := a.findings.Close(cmd.Context(), f, comment); err != nil {
				return failure(out, err)
			}
			return report(out, true, "Hallazgo cerrado")
		},
	}
	cmd.Flags().StringVarP(&comment, "comentario", "c", "", "Comentario de cierre (mínimo 10 caracteres)")
	return cmd
}

func newFindingCloseAllCmd(get appGetter) *cobra.Command {
	var comment string
	cmd := &cobra.Command{
		Use:   "cerrar-todos <id>...",
		Short: "Cierra varios hallazgos con el mismo comentario",
		Long: `Cierra todos los hallazgos indicados. Si alguno no se puede cerrar no se
cierra ninguno.

Ejemplo:
  hallazgos hallazgo cerrar-todos 218659943 219581583 -c "Revisión de cierre mensual"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			closed, err := get().findings.CloseAll(cmd.Context(), args, comment)
			if err != nil {
				return failure(out, err)
			}
			return report(out, true, fmt.Sprintf("%d hallazgos cerrados", len(closed)))
		},
	}
	cmd.Flags().StringVarP(&comment, "comentario", "c", "", "Comentario de cierre (mínimo 10 caracteres)")
	return cmd
}

func newFindingReopenCmd(get appGetter) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "reabrir <id>",
		Short: "Reabre un hallazgo cerrado",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, out := get(), cmd.OutOrStdout()
			f, err := a.findings.Get(cmd.Context(), args[0])
			if err != nil {
				return failure(out, err)
			}
			if _, err := a.findings.Reopen(cmd.Context(), f, reason); err != nil {
				return failure(out, err)
			}
			return report(out, true, "Hallazgo reabierto")
		},
	}
	cmd.Flags().StringVarP(&reason, "motivo", "m", "", "Motivo de reapertura (mínimo 10 caracteres)")
	return cmd
}

func newFindingDeleteCmd(get appGetter) *cobra.Command {
	return &cobra.Command{
		Use:   "eliminar <id>",
		Short: "Elimina un hallazgo (solo administradores)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, out := get(), cmd.OutOrStdout()
			f, err := a.findings.Get(cmd.Context(), args[0])
			if err != nil {
				return failure(out, err)
			}
			if err := a.findings.Delete(cmd.Context(), f); err != nil {
				return failure(out, err)
			}
			return report(out, true, "Hallazgo eliminado")
		},
	}
}

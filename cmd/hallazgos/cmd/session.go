package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
)

// passwordEnv variable de entorno alternativa a --password.
const passwordEnv = "HALLAZGOS_PASSWORD"

var stepNames = map[entity.FlowStep]string{
	entity.StepCompany:       "empresa",
	entity.StepCredentials:   "credenciales",
	entity.StepAuthenticated: "autenticado",
}

func companyLabel(c *entity.Company) string {
	if c == nil {
		return "-"
	}
	if c.TaxID == "" {
		return fmt.Sprintf("%s (ID %d)", c.Name, c.ID)
	}
	return fmt.Sprintf("%s (ID %d, NIT %s)", c.Name, c.ID, c.TaxID)
}

func printState(w io.Writer, st entity.FlowState) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Paso:\t%s\n", bold(stepNames[st.Step]))
	fmt.Fprintf(tw, "Empresa:\t%s\n", companyLabel(st.ValidatedCompany))
	fmt.Fprintf(tw, "Empresa recordada:\t%s\n", companyLabel(st.RememberedCompany))
	if u := st.CurrentUser; u != nil {
		fmt.Fprintf(tw, "Usuario:\t%s <%s>\n", u.FullName(), u.Email)
		fmt.Fprintf(tw, "Rol:\t%s\n", u.Role.DisplayName())
		zone := u.Zone
		if zone == "" {
			zone = "sin restricción"
		}
		fmt.Fprintf(tw, "Zona:\t%s\n", zone)
		fmt.Fprintf(tw, "Puede editar:\t%s\n", yesNo(u.CanEdit))
	}
	if st.CompanyError != "" {
		fmt.Fprintf(tw, "Error de empresa:\t%s\n", warnText(st.CompanyError))
	}
	if st.LoginError != "" {
		fmt.Fprintf(tw, "Error de login:\t%s\n", warnText(st.LoginError))
	}
	tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "sí"
	}
	return "no"
}

func newStatusCmd(get appGetter) *cobra.Command {
	return &cobra.Command{
		Use:   "estado",
		Short: "Muestra el paso del acceso y la sesión actual",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printState(cmd.OutOrStdout(), get().machine.State())
			return nil
		},
	}
}

func newCompanyCmd(get appGetter) *cobra.Command {
	return &cobra.Command{
		Use:   "empresa <id|nombre|nit>",
		Short: "Valida la empresa con la que se iniciará sesión",
		Long: `Busca la empresa en el directorio público por ID, nombre (sin distinguir
mayúsculas) o NIT. Si existe queda guardada como empresa actual.

Ejemplos:
  hallazgos empresa 1
  hallazgos empresa "Empresa1"
  hallazgos empresa 900123456-1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := get().machine.ValidateCompany(cmd.Context(), strings.Join(args, " "))
			if res.Success {
				return report(cmd.OutOrStdout(), true, fmt.Sprintf("%s: %s", res.Message, companyLabel(res.Company)))
			}
			return report(cmd.OutOrStdout(), false, res.Message)
		},
	}
}

func newLoginCmd(get appGetter) *cobra.Command {
	var (
		password string
		remember bool
	)
	cmd := &cobra.Command{
		Use:   "login <correo>",
		Short: "Inicia sesión en la empresa validada",
		Long: `Inicia sesión con correo y contraseña en la empresa validada (o recordada).
La contraseña se toma de --password o, si no se indica, de HALLAZGOS_PASSWORD.

Ejemplos:
  hallazgos login admin@empresa1.com --password 1234 --recordar
  HALLAZGOS_PASSWORD=1234 hallazgos login admin@empresa1.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			res := get().machine.Login(cmd.Context(), args[0], password, remember)
			if !res.Success {
				return report(cmd.OutOrStdout(), false, res.Message)
			}
			return report(cmd.OutOrStdout(), true,
				fmt.Sprintf("%s: %s en %s", res.Message, res.User.FullName(), companyLabel(res.Company)))
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Contraseña (por defecto $"+passwordEnv+")")
	cmd.Flags().BoolVar(&remember, "recordar", false, "Recordar la empresa para el próximo acceso")
	return cmd
}

func newLogoutCmd(get appGetter) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Cierra la sesión",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := get().machine.Logout(cmd.Context())
			return report(cmd.OutOrStdout(), res.Success, res.Message)
		},
	}
}

func newChangeCompanyCmd(get appGetter) *cobra.Command {
	return &cobra.Command{
		Use:   "cambiar-empresa",
		Short: "Olvida la empresa actual y la recordada",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			get().machine.ChangeCompany(cmd.Context())
			return report(cmd.OutOrStdout(), true, "Ingrese la nueva empresa con 'hallazgos empresa'")
		},
	}
}

func newForgetCompanyCmd(get appGetter) *cobra.Command {
	return &cobra.Command{
		Use:   "olvidar-empresa",
		Short: "Deja de recordar la empresa en los próximos accesos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			get().machine.ForgetCompany(cmd.Context())
			return report(cmd.OutOrStdout(), true, "Empresa olvidada")
		},
	}
}

func newRefreshCmd(get appGetter) *cobra.Command {
	return &cobra.Command{
		Use:   "refrescar",
		Short: "Recarga rol y permisos del usuario desde el servidor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := get().machine
			if !m.RefreshPermissions(cmd.Context()) {
				return report(cmd.OutOrStdout(), false, "No se pudieron actualizar los permisos")
			}
			u := m.State().CurrentUser
			return report(cmd.OutOrStdout(), true, fmt.Sprintf("Permisos actualizados: %s", u.Role.DisplayName()))
		},
	}
}

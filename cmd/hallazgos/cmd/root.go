// Package cmd comandos del cliente de línea de comandos de LxHallazgos.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jhoicas/lxhallazgos/pkg/config"
)

// Version se fija al compilar.
var Version = "0.1.0"

// errReported el comando ya mostró el motivo del fallo; solo falta el código de salida.
var errReported = errors.New("operación no completada")

var (
	okText   = color.New(color.FgGreen).SprintFunc()
	errText  = color.New(color.FgRed).SprintFunc()
	warnText = color.New(color.FgYellow).SprintFunc()
	bold     = color.New(color.Bold).SprintFunc()
)

// newRootCmd arma el árbol de comandos. Cada invocación abre su propio almacenamiento de sesión;
// closeApp lo cierra aunque el comando haya fallado.
func newRootCmd() (root *cobra.Command, closeApp func()) {
	var a *app

	root = &cobra.Command{
		Use:   "hallazgos",
		Short: "Cliente de LxHallazgos",
		Long: `hallazgos es el cliente de línea de comandos de LxHallazgos.

El acceso es progresivo: primero se valida la empresa (por ID, nombre o NIT),
luego se inicia sesión con correo y contraseña. La sesión queda guardada
localmente y se restaura en la siguiente invocación mientras siga vigente.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("cargar configuración: %w", err)
			}
			a, err = newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.machine.Start(cmd.Context())
			return nil
		},
	}

	get := func() *app { return a }
	root.AddCommand(
		newStatusCmd(get),
		newCompanyCmd(get),
		newLoginCmd(get),
		newLogoutCmd(get),
		newChangeCompanyCmd(get),
		newForgetCompanyCmd(get),
		newRefreshCmd(get),
		newPermissionsCmd(get),
		newFindingCmd(get),
		newProfileCmd(get),
		newChangePasswordCmd(get),
		newUserCmd(get),
	)
	return root, func() {
		if a != nil {
			a.Close()
		}
	}
}

// Execute ejecuta el comando raíz con los argumentos del proceso.
func Execute() error {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, out, errOut io.Writer) error {
	root, closeApp := newRootCmd()
	defer closeApp()

	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	err := root.Execute()
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(errOut, errText("Error:"), err)
	}
	return err
}

// appGetter da acceso a la aplicación armada en PersistentPreRunE.
type appGetter func() *app

// report muestra un resultado con su color; los fallos devuelven errReported.
func report(w io.Writer, success bool, msg string) error {
	if success {
		fmt.Fprintln(w, okText("✓"), msg)
		return nil
	}
	fmt.Fprintln(w, errText("✗"), msg)
	return errReported
}

package main

import (
	"os"

	"github.com/jhoicas/lxhallazgos/cmd/hallazgos/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

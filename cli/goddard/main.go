package main

import (
	"os"

	goddardcmder "github.com/jlud7/goddard-gui/cmd/goddard"
)

func main() {
	cmd := goddardcmder.NewGoddardCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

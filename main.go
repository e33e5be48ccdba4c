package main

import (
	"fmt"
	"os"

	"github.com/thiagokokada/gitview/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		if !cmd.Silent(err) {
			fmt.Fprintf(os.Stderr, "gitview: %v\n", err)
		}
		os.Exit(cmd.ExitCode(err))
	}
}

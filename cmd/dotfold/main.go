package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/dotfold/internal/cli"
	"github.com/arthur-debert/dotfold/pkg/style"
)

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", style.ErrorStyle.Render("error:"), err)
		os.Exit(1)
	}
}

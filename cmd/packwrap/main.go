package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/packwrap/pkg/style"
)

func main() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, style.ErrorStyle.Render("Error:"), err)
		os.Exit(exitCodeFor(err))
	}
}

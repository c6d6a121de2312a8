package main

import (
	"blog-admin/internal/commands"
	"fmt"
	"os"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/doispes-dev/doispes/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/flipscope/flipscope/cmd/flipscope/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

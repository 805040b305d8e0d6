package main

import (
	"os"

	"github.com/mjarreta/parkd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/parcelforge/parcelforge/cmd/parcelforge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

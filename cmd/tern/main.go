package main

import (
	"os"

	"github.com/ternlabs/tern/cmd/tern/root"
)

func main() {
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

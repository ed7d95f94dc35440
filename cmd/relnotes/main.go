package main

import (
	"os"

	"github.com/ariel-frischer/relnotes/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

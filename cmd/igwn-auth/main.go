package main

import (
	"os"

	"github.com/igwn/authutils/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

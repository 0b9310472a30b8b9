package main

import (
	"os"

	"stocks/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}

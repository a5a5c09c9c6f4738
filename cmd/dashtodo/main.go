package main

import (
	"os"

	"dashtodo/cli"
)

func main() {
	os.Exit(cli.Execute())
}

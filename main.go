package main

import (
	"os"

	"github.com/mlsweep/sweepctl/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}

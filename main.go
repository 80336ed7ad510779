package main

import (
	cmd "github.com/mdrp-sim/go-engine/cmd"
)

const (
	version = "0.1.0"
)

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}

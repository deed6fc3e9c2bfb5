package main

import (
	"github.com/biolinks/biolinks/pkg/cli/cmd"
	"github.com/biolinks/biolinks/pkg/version"
)

func main() {
	version.SetComponent("biolinks")
	cmd.Execute()
}

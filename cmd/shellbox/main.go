package main

import (
	"os"

	"shellbox/internal/cli"
	"shellbox/internal/sandbox"
	"shellbox/internal/sandboxinit"
)

func main() {
	// The launcher re-executes this binary with the init marker set.
	// Dispatch before cobra so nothing else runs in the child.
	if os.Getenv(sandbox.InitEnvVar) == "1" {
		sandboxinit.Run()
		return
	}

	cli.Execute()
}

// Puter AI CLI - chat with models through the Puter driver API.
package main

import (
	"fmt"
	"os"

	"github.com/fernlabs/puterai/cli/commands"
)

// ExitCoder is an interface for errors that have an exit code.
// Errors carrying an exit code have already written their output.
type ExitCoder interface {
	ExitCode() int
}

func main() {
	if err := commands.Execute(); err != nil {
		if ec, ok := err.(ExitCoder); ok {
			os.Exit(ec.ExitCode())
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// The main package for the eudr-monitor executable.
package main

import (
	"github.com/Krause140/eudr-monitor-24-7/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}

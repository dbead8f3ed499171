// Package version provides build version information for logdevourer.
package version

import (
	"fmt"
	"os"
)

const (
	// Name of the daemon.
	Name string = "logdevourer"
	// Version of the daemon.
	Version string = "1.0.0-develop"
)

// String returns a plain text representation of the version information,
// suitable for logging and the --version CLI flag.
func String() string {
	return fmt.Sprintf("%s %s", Name, Version)
}

// Print writes the version string to stdout.
func Print() {
	fmt.Println(String())
}

// PrintAndExit prints the version and exits cleanly.
func PrintAndExit() {
	Print()
	os.Exit(0)
}

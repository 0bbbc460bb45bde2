// The main package for the animefeed executable.
package main

import (
	"os"

	"github.com/vadviktor/animefeed/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

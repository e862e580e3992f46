// Command catalogctl manages the product catalog through the catalog API.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr, newClient)
	if err := app.Run(os.Args); err != nil {
		os.Exit(exitCode(err, os.Stderr))
	}
}

// exitCode prints err unless it was already reported and returns the code
// to exit with.
func exitCode(err error, stderr io.Writer) int {
	code := 1
	if coder, ok := err.(cli.ExitCoder); ok {
		code = coder.ExitCode()
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintf(stderr, "Error: %v\n", msg)
	}
	return code
}

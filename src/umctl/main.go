// umctl is the command-line client for the umd user management server.
package main

import (
	"github.com/nephophile/umt/src/umctl/internal/cmd"
)

func main() {
	cmd.Execute()
}

// umd is the user management API server of the umt platform.
// It exposes a REST API for registration, authentication and bulk user
// administration.
package main

import (
	"github.com/nephophile/umt/src/umd/core"
)

func main() {
	core.Execute()
}

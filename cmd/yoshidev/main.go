// Yoshidev bundles the maintenance utilities of the Yoshimi source tree.
package main

import "github.com/yoshimi/yoshidev/cmd/yoshidev/internal/cli"

func main() {
	cli.Execute()
}

// Command vgs backs up and restores the grant tables of a SQLite grant store.
package main

import "github.com/mesh-intelligence/vgs/internal/cli"

func main() {
	cli.Execute()
}

// Command archrepo validates, imports and exports architecture repository
// snapshots.
package main

import "archrepo/internal/cli"

func main() {
	cli.Execute()
}

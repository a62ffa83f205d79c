// Command pagetrace replays memory traces through a simulated two-level data
// cache and reports the accesses per page.
package main

import "github.com/sarchlab/pagetrace/cmd/pagetrace/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/jbadsdata/arc-hacks/cmd"

func main() {
	cmd.Execute()
}

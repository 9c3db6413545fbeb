package main

import "github.com/kiesman99/splitsave/cmd"

func main() {
	cmd.Execute()
}

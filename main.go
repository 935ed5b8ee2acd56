package main

import "github.com/skyrent/fleetlink/cmd"

func main() {
	cmd.Execute()
}

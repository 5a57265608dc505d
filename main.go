package main

import "itinera/cmd"

func main() {
	cmd.Execute()
}

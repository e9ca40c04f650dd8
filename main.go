package main

import "github.com/andrejsstepanovs/proposalpilot/cmd"

func main() {
	cmd.Execute()
}

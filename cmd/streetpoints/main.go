package main

import "github.com/treepedia/streetpoints/cmd"

func main() {
	cmd.Main(cmd.PrintCmds)
}

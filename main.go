package main

import "vintagefm/cmd"

func main() {
	cmd.Execute()
}

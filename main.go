package main

import "github.com/kiesman99/panorama/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/SmshNGrab/joan-home-displays/vssctl/cmd"

func main() {
	cmd.Execute()
}

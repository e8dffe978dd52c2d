package main

import "github.com/nfrund/kaashub/cmd/kaashub/cmd"

func main() {
	cmd.Execute()
}

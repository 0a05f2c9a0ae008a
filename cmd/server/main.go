package main

import "github.com/shiftmaze/shiftmaze/internal/cli"

func main() {
	cli.Execute()
}

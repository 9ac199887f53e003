package main

import "github.com/crimson-sun/attune/internal/cmd"

func main() {
	cmd.Execute()
}

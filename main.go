package main

import "github.com/hoppxi/backlighter/internal/cmd"

func main() {
	cmd.Execute()
}

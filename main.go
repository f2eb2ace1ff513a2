package main

import "github.com/flowmark/flowmark/cmd"

func main() {
	cmd.Execute()
}

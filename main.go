package main

import "github.com/joshuaeyu/plum/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/jad7/imouapi/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/probfit/gproc/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/iamsorenl/Autogen-Chat-Demo/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/meshadapt/goamr/cmd"

func main() {
	cmd.Execute()
}

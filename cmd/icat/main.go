package main

import "github.com/blacktop/go-icat/cmd/icat/cmd"

func main() {
	cmd.Execute()
}

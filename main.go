package main

import "github.com/gabrielfornes/memex/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/stevehiehn/calcengine/cmd"

func main() {
	cmd.Execute()
}

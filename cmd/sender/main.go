package main

import "github.com/Togather-Foundation/dashlog/cmd/sender/cmd"

func main() {
	cmd.Execute()
}

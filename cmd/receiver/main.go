package main

import "github.com/Togather-Foundation/dashlog/cmd/receiver/cmd"

func main() {
	cmd.Execute()
}

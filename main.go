package main

import "github.com/ddxy18/git-hooks/cmd"

func main() {
	cmd.Execute()
}

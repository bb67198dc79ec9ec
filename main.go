package main

import "github.com/agentic-research/lexvault/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/emiliopalmerini/aglab/internal/cli"

func main() {
	cli.Execute()
}

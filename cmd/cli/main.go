package main

import "github.com/vstats-analysis/cmd/cli/cmd"

func main() {
	cmd.Execute()
}

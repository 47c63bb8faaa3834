// Package main is the entry point for the mp CLI.
package main

import "github.com/moviepilot/mp-cli/internal/cli"

func main() {
	cli.Execute()
}

// Package main is the entry point for the docchat terminal client.
package main

import (
	"github.com/glokal-ai/docchat/internal/cli"
)

func main() {
	cli.Execute()
}

// Package main provides the survey CLI and server binary.
package main

import "github.com/mesh-intelligence/survey/internal/cli"

func main() {
	cli.Execute()
}

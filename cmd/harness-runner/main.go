package main

import "github.com/webplat-dev/harness-runner/pkg/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/mcoot/lanova-arcade/internal/cli"

func main() {
	cli.Execute()
}

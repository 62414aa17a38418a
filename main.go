package main

import "translingo/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/upm-go/upm/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/funvibe/javatrace/pkg/cli"

func main() {
	cli.Run()
}

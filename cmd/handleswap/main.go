package main

import "github.com/handleswap/handleswap/internal/cli"

func main() {
	cli.Execute()
}

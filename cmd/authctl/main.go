package main

import (
	"github.com/tabletome/authcore/internal/cli"
)

func main() {
	cli.Execute()
}

package main

import (
	"github.com/pgrind/pgrind/cmd/pgrind/cmd"
)

func main() {
	cmd.Execute()
}

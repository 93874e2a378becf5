package main

import (
	"github.com/averde/docnet/cmd"
)

func main() {
	cmd.Execute()
}

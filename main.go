package main

import (
	"github.com/foomo/promptserver/cmd"
)

func main() {
	cmd.Execute()
}

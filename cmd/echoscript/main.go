package main

import (
	"echoscript/cmd/echoscript/cmd"
)

func main() {
	cmd.Execute()
}

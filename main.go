package main

import (
	"TuneFM/cmd"
)

func main() {
	cmd.Execute()
}

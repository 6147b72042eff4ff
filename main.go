package main

import "github.com/Alijeyrad/sapan_backend/cmd"

func main() {
	cmd.Execute()
}

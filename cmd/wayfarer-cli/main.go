package main

import "github.com/zfogg/wayfarer/cli/internal/cmd"

func main() {
	cmd.Execute()
}

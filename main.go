package main

import "github.com/attache-dl/attache/cmd"

func main() {
	cmd.Execute()
}

package main

import "github/chapool/go-invoker/cmd"

func main() {
	cmd.Execute()
}

package main

import "memoryvault/cmd"

func main() {
	cmd.Execute()
}

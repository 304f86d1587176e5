package main

import "questlog/cmd/questlog/root"

func main() {
	root.Execute()
}

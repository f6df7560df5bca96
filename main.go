package main

import "go-restaurant-ordering/cmd"

func main() {
	cmd.Execute()
}

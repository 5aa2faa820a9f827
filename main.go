package main

import "github.com/nakia73/autowordpress/cmd"

func main() {
	cmd.Execute()
}

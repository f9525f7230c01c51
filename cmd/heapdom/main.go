package main

import "github.com/memsnap/heapdom/cmd/heapdom/cmd"

func main() {
	cmd.Execute()
}

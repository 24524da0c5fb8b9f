package main

import "github.com/Rorical/RoriAtlas/cmd"

func main() {
	cmd.Execute()
}

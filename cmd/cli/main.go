package main

import "guild-jukebox/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/frostholm/marginalia/internal/adapters/driving/cli"

func main() {
	cli.Execute()
}

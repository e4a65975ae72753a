package main

import "github.com/HaiFongPan/folio-cli/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/oshokin/protonup/cmd/protonup/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/rebk-studio/ms-go-studio/cmd"

func main() {
	cmd.Execute()
}

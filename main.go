package main

import "cloze-manager/cmd"

func main() {
	cmd.Execute()
}

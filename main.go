package main

import "timecard/cmd"

func main() {
	cmd.Execute()
}

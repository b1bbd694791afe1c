package main

import "countytax-backend/cmd/countytax/cmd"

func main() {
	cmd.Execute()
}

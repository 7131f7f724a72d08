package main

import "datasources-client/cmd/datasources-cli/cmd"

func main() {
	cmd.Execute()
}

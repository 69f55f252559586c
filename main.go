package main

import "github.com/petmatch/auth-service/cmd"

func main() {
	cmd.Execute()
}

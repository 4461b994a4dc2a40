package main

import "github.com/conversa-ai/mvarchive/cmd"

func main() {
	cmd.Execute()
}

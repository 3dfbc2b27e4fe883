package main

import "github.com/lisun-ai/DocAgent/cmd"

func main() {
	cmd.Execute()
}

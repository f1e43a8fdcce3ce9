package main

import "github.com/user/blog-platform/cmd"

func main() {
	cmd.Execute()
}

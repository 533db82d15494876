package main

import "github.com/mvp-joe/project-archmap/internal/cli"

func main() {
	cli.Execute()
}

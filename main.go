package main

import "github.com/shouni/go-cold-outreach/cmd"

func main() {
	cmd.Execute()
}

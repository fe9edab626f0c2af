package main

import "github.com/frahmantamala/org-directory/cmd"

func main() {
	cmd.Execute()
}

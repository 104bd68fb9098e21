package main

import "github.com/frahmantamala/agency-portal/cmd"

func main() {
	cmd.Execute()
}

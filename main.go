package main

import "github.com/kpn-dsh/dsh-cli-sub000/cmd"

func main() {
	cmd.Execute()
}

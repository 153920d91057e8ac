package main

import "github.com/MariHpf/oauth-app-marius-test/cmd/server/cmd"

func main() {
	cmd.Execute()
}

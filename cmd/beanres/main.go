package main

import "github.com/cmmoran/beanres/cmd"

func main() {
	cmd.Execute()
}

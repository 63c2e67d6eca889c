package main

import "github.com/SoarinFerret/pomodoro/cmd/pomoctl/arg"

func main() {
	arg.Execute()
}

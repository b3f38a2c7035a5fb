package main

import (
	"github.com/rabithua/memoask/cmd"
)

func main() {
	err := cmd.Execute()
	if err != nil {
		panic(err)
	}
}

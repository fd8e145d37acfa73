package main

import (
	"fmt"
	"os"

	"github.com/embeddedtls/recordproto/cmd/recordctl/cmd"
)

func main() {
	if err := cmd.RootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

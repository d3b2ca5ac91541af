package main

import (
	"fmt"
	"os"

	"github.com/coldchain-go/coldchain/cmd"
	"github.com/coldchain-go/coldchain/internal/conf"
	"github.com/coldchain-go/coldchain/internal/logger"
)

func main() {
	settings := &conf.Settings{}
	err := cmd.RootCommand(settings).Execute()
	_ = logger.Global().Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

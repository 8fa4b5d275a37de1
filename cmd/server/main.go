package main

import (
	"context"
	"fmt"
	"os"

	"github.com/iliyamo/picklepass/internal/cli"
)

func main() {
	if err := cli.NewRoot().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd, cctx := newRootCommand()
	err := cmd.ExecuteContext(context.Background())
	cctx.close()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

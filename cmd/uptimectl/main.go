package main

import (
	"fmt"
	"os"

	"github.com/hamed0406/uptimewatch/internal/cli"
	"github.com/hamed0406/uptimewatch/internal/cli/style"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, style.ErrorBox.Render(err.Error()))
		os.Exit(1)
	}
}

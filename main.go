package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Edwinhr716/maxtext/cmd"
)

func main() {
	cobra.CheckErr(cmd.NewCLI().ExecuteContext(context.Background()))
}

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/nika-tui/nika/cmd/nika"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cobra.CheckErr(nika.Execute(ctx))
}

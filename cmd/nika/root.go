package nika

import (
	"context"
	"fmt"

	"github.com/nika-tui/nika/pkg/app"
	"github.com/nika-tui/nika/pkg/config"
	"github.com/nika-tui/nika/pkg/services"
	"github.com/spf13/cobra"
)

var (
	configPath string
	sourceName string

	// ctrl is built from the config before any command runs.
	ctrl *services.Controller
)

var rootCmd = &cobra.Command{
	Use:           "nika",
	Short:         "Search, read and download comics from the terminal",
	Long:          "Browse comic sources in a TUI, or script searches and chapter downloads from the CLI",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		ctrl, err = services.NewController(cfg)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if ctrl == nil {
			return nil
		}
		return ctrl.Close()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Launch TUI by default
		return app.NewApp(ctrl, sourceName).Run(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file")
	rootCmd.PersistentFlags().StringVarP(&sourceName, "source", "s", "", "source to use (default from config)")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(chaptersCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func truncateString(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

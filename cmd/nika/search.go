package nika

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/nika-tui/nika/pkg/app/styles"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for comics",
	Long:  "Search the selected source and print the results as a table",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		source, err := ctrl.Source(sourceName)
		if err != nil {
			return err
		}

		results, err := source.Search(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if len(results) == 0 {
			fmt.Println("No results found.")
			return nil
		}

		t := newTable("#", "Name", "Type", "Locator")
		for i, comic := range results {
			t.Row(fmt.Sprint(i+1), truncateString(comic.Name, 50), comic.Type.String(), comic.Source)
		}
		fmt.Println(t)
		return nil
	},
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.HeaderCell
			}
			return styles.Cell
		}).
		Headers(headers...)
}

package nika

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List finished downloads",
	Long:  "Display every finished chapter download, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		downloads, err := ctrl.History()
		if err != nil {
			return err
		}
		if len(downloads) == 0 {
			fmt.Println("No downloads yet. Use 'nika download' or the TUI to fetch a chapter.")
			return nil
		}

		columns := []table.Column{
			{Title: "Comic", Width: 30},
			{Title: "Chapter", Width: 30},
			{Title: "Source", Width: 10},
			{Title: "Pages", Width: 7},
			{Title: "Finished", Width: 16},
			{Title: "Directory", Width: 50},
		}

		rows := []table.Row{}
		for _, d := range downloads {
			pages := fmt.Sprint(d.Pages)
			if d.Failed > 0 {
				pages = fmt.Sprintf("%d/%d", d.Pages-d.Failed, d.Pages)
			}
			rows = append(rows, table.Row{
				truncateString(d.Comic, 28),
				truncateString(d.Chapter, 28),
				d.Source,
				pages,
				d.FinishedAt.Format("2006-01-02 15:04"),
				d.Dir,
			})
		}

		t := table.New(
			table.WithColumns(columns),
			table.WithRows(rows),
			table.WithFocused(false),
			table.WithHeight(len(rows)),
		)

		s := table.DefaultStyles()
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
		s.Selected = s.Cell
		t.SetStyles(s)

		fmt.Printf("\nHistory (%d downloads)\n\n", len(downloads))
		fmt.Println(t.View())
		return nil
	},
}

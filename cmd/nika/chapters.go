package nika

import (
	"fmt"
	"strings"

	"github.com/nika-tui/nika/pkg/data"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var chaptersCmd = &cobra.Command{
	Use:   "chapters [comic-url]",
	Short: "List the chapters of a comic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := ctrl.Source(sourceName)
		if err != nil {
			return err
		}
		comic := data.Comic{Source: args[0], SourceName: source.Name()}

		var (
			chapters []data.Chapter
			info     *data.Metadata
		)
		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() (err error) {
			chapters, err = source.GetChapters(ctx, comic)
			return err
		})
		g.Go(func() (err error) {
			info, err = source.GetInfo(ctx, comic)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		if info != nil {
			fmt.Printf("%s · %s · %s\n\n", info.Status, info.Date, strings.Join(info.Genres, ", "))
		}
		t := newTable("#", "Chapter", "Locator")
		for i, ch := range chapters {
			t.Row(fmt.Sprint(i+1), truncateString(ch.Name, 50), ch.Source)
		}
		fmt.Println(t)
		return nil
	},
}

package nika

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/nika-tui/nika/pkg/app/action"
	"github.com/nika-tui/nika/pkg/app/bus"
	"github.com/nika-tui/nika/pkg/app/components"
	"github.com/nika-tui/nika/pkg/app/events"
	"github.com/nika-tui/nika/pkg/data"
	"github.com/nika-tui/nika/pkg/integrations"
	"github.com/nika-tui/nika/pkg/services"
	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download [chapter-url]",
	Short: "Download one chapter",
	Long:  "Download every page of a chapter into a new directory, printing progress as it goes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		comicName, _ := cmd.Flags().GetString("comic")
		chapterName, _ := cmd.Flags().GetString("name")
		packEPUB, _ := cmd.Flags().GetBool("epub")

		source, err := ctrl.Source(sourceName)
		if err != nil {
			return err
		}
		if chapterName == "" {
			chapterName = args[0]
		}
		chapter := data.NewChapter(chapterName, args[0])

		downloader := ctrl.Downloader
		if packEPUB && !ctrl.Config.EPUB {
			downloader.WithPacker(integrations.NewEPubBuilder(filepath.Join(ctrl.Config.DownloadDir, "epub")))
		}

		ctx := cmd.Context()
		b := bus.New()
		go events.NewSource(b).WithInterval(200 * time.Millisecond).Run(ctx)

		type outcome struct {
			result *services.Result
			err    error
		}
		done := make(chan outcome, 1)
		go func() {
			r, err := downloader.Download(ctx, source, comicName, chapter, b)
			done <- outcome{r, err}
			b.Close()
		}()

		// Same shape as the TUI loop: apply a batch, draw once per batch
		// that carried a Render.
		gauge := components.NewGauge(services.ProgressLabel(chapter))
		for {
			batch, err := b.RecvBatch(ctx)
			if err != nil {
				break
			}
			redraw := false
			for _, a := range batch {
				switch a := a.(type) {
				case action.ProgressUpdate:
					gauge.Add(a.Delta)
				case action.Render:
					redraw = true
				}
			}
			if redraw {
				fmt.Printf("\r%s %3.0f%%", gauge.Label, gauge.Ratio()*100)
			}
		}
		fmt.Println()

		out := <-done
		if out.err != nil {
			if errors.Is(out.err, services.ErrNoAssets) {
				return fmt.Errorf("%s: nothing to download", chapter.Source)
			}
			return fmt.Errorf("download failed: %w", out.err)
		}

		fmt.Printf("Saved %d pages to %s\n", len(out.result.Pages)-len(out.result.Failed()), out.result.Dir)
		if failed := out.result.Failed(); len(failed) > 0 {
			fmt.Printf("Failed pages: %v\n", failed)
		}
		if out.result.EPUB != "" {
			fmt.Printf("EPUB: %s\n", out.result.EPUB)
		}
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringP("comic", "c", "nika", "comic name used for the history and the EPUB title")
	downloadCmd.Flags().StringP("name", "n", "", "chapter name (defaults to the URL)")
	downloadCmd.Flags().Bool("epub", false, "also pack the chapter into an EPUB")
}

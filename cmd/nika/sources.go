package nika

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the available sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := newTable("", "Name", "Site")
		for _, name := range ctrl.Sources.Names() {
			source, err := ctrl.Sources.Get(name)
			if err != nil {
				return err
			}
			mark := ""
			if name == ctrl.Config.DefaultSource {
				mark = "*"
			}
			t.Row(mark, name, source.BaseURL())
		}
		fmt.Println(t)
		return nil
	},
}

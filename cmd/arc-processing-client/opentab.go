package main

import (
	"github.com/spf13/cobra"

	"github.com/arcnetwork/arc-processing/api/client"
)

func init() {
	var tabURL string

	var cmdOpenTab = &cobra.Command{
		Use:   "open_tab",
		Short: "Open the extension surface in a tab, reusing an existing one",
		Run: func(cmd *cobra.Command, args []string) {
			showResponse(client.NewClient(apiURL).OpenTab(tabURL))
		},
	}

	cmdOpenTab.Flags().StringVarP(&tabURL, "url", "l", "", "url to open (defaults to popup surface url)")

	cli.AddCommand(cmdOpenTab)
}

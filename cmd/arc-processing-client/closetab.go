package main

import (
	"github.com/spf13/cobra"

	"github.com/arcnetwork/arc-processing/api/client"
)

func init() {
	var cmdCloseTab = &cobra.Command{
		Use:   "close_extension_tab",
		Short: "Close the extension surface tab",
		Run: func(cmd *cobra.Command, args []string) {
			showResponse(nil, client.NewClient(apiURL).CloseExtensionTab())
		},
	}

	cli.AddCommand(cmdCloseTab)
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/arcnetwork/arc-processing/api/client"
)

func init() {
	var cmdClearBadge = &cobra.Command{
		Use:   "clear_payment_badge",
		Short: "Clear the pending payment badge",
		Run: func(cmd *cobra.Command, args []string) {
			showResponse(nil, client.NewClient(apiURL).ClearPaymentBadge())
		},
	}

	cli.AddCommand(cmdClearBadge)
}

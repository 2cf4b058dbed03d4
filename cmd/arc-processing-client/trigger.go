package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/arcnetwork/arc-processing/api/client"
	"github.com/arcnetwork/arc-processing/arc"
)

func init() {
	var cmdTriggerPayment = &cobra.Command{
		Use:   "trigger_payment AMOUNT",
		Short: "Start merchant payment flow for given amount",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			amount, err := arc.AmountFromStringedFloat(args[0])
			if err != nil {
				log.Fatalf("Failed to parse amount %q: %s", args[0], err)
			}
			showResponse(nil, client.NewClient(apiURL).TriggerPayment(amount))
		},
	}

	cli.AddCommand(cmdTriggerPayment)
}

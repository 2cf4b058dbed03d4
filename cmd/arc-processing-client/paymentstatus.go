package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/arcnetwork/arc-processing/api/client"
	"github.com/arcnetwork/arc-processing/arc"
	"github.com/arcnetwork/arc-processing/payment/types"
)

func init() {
	var amountString string
	var transactionID string
	var reason string

	var cmdPaymentStatus = &cobra.Command{
		Use:   "payment_status STATUS",
		Short: "Relay a payment status notification to the merchant page",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			status, err := types.NotificationStatusFromString(args[0])
			if err != nil {
				log.Fatal(err)
			}
			notification := types.StatusNotification{
				Status:        status,
				TransactionID: transactionID,
				Currency:      arc.Currency,
				Reason:        reason,
			}
			if amountString != "" {
				amount, err := arc.AmountFromStringedFloat(amountString)
				if err != nil {
					log.Fatalf(
						"Failed to parse amount %q: %s", amountString, err,
					)
				}
				notification.Amount = &amount
			}
			showResponse(nil, client.NewClient(apiURL).PaymentStatus(notification))
		},
	}

	cmdPaymentStatus.Flags().StringVarP(&amountString, "amount", "a", "", "payment amount")
	cmdPaymentStatus.Flags().StringVarP(&transactionID, "transaction-id", "t", "", "backend transaction hash")
	cmdPaymentStatus.Flags().StringVarP(&reason, "reason", "r", "", "cancellation reason")

	cli.AddCommand(cmdPaymentStatus)
}

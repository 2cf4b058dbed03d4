package client

import (
	"github.com/arcnetwork/arc-processing/api"
	"github.com/arcnetwork/arc-processing/arc"
)

func (cli *Client) TriggerPayment(amount arc.Amount) error {
	return cli.sendHTTPAPIRequest(
		api.TriggerPaymentURL,
		&api.TriggerPaymentRequest{Amount: amount},
		nil,
	)
}

package client

import (
	"github.com/arcnetwork/arc-processing/api"
	"github.com/arcnetwork/arc-processing/payment/types"
)

func (cli *Client) PaymentStatus(notification types.StatusNotification) error {
	return cli.sendHTTPAPIRequest(api.PaymentStatusURL, notification, nil)
}

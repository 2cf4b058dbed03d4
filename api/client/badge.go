package client

import (
	"github.com/arcnetwork/arc-processing/api"
)

func (cli *Client) ClearPaymentBadge() error {
	return cli.sendHTTPAPIRequest(api.ClearPaymentBadgeURL, nil, nil)
}

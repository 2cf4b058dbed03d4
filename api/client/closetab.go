package client

import (
	"github.com/arcnetwork/arc-processing/api"
)

func (cli *Client) CloseExtensionTab() error {
	return cli.sendHTTPAPIRequest(api.CloseExtensionTabURL, nil, nil)
}

package client

import (
	"encoding/json"

	"github.com/arcnetwork/arc-processing/api"
	"github.com/arcnetwork/arc-processing/coordinator"
)

func (cli *Client) OpenTab(url string) (*coordinator.OpenTabResult, error) {
	var responseData coordinator.OpenTabResult

	err := cli.sendHTTPAPIRequest(
		api.OpenTabURL,
		&api.OpenTabRequest{URL: url},
		func(response []byte) error {
			return json.Unmarshal(response, &responseData)
		},
	)
	return &responseData, err
}

package client

import (
	"encoding/json"

	"github.com/arcnetwork/arc-processing/api"
	"github.com/arcnetwork/arc-processing/events"
)

// GetEvents fetches stored event feed entries with seq >= startSeq
func (cli *Client) GetEvents(startSeq int) ([]*events.NotificationWithSeq, error) {
	var feed []*events.NotificationWithSeq

	err := cli.sendHTTPAPIRequest(
		api.GetEventsURL,
		&api.SubscribeMessage{Seq: startSeq},
		func(result []byte) error {
			return json.Unmarshal(result, &feed)
		},
	)
	return feed, err
}

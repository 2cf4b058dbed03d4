package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/arcnetwork/arc-processing/api"
	"github.com/arcnetwork/arc-processing/util"
)

// deferredResult postpones decoding of the "result" envelope field to a
// per-operation callback, so each API method unmarshals into its own type
type deferredResult struct {
	unmarshalCb func([]byte) error
}

func (r deferredResult) UnmarshalJSON(b []byte) error {
	if r.unmarshalCb == nil {
		return nil
	}
	return r.unmarshalCb(b)
}

type envelopeResponse struct {
	api.GenericHTTPAPIResponse
	Result deferredResult `json:"result"`
}

func (cli *Client) sendHTTPAPIRequest(relativeURL string, request interface{}, resultCb func([]byte) error) error {
	requestBody := []byte(nil)
	if request != nil {
		var err error
		if requestBody, err = json.Marshal(request); err != nil {
			return err
		}
	}

	fullURL, err := util.URLJoin(cli.apiBaseURL, relativeURL)
	if err != nil {
		return err
	}

	resp, err := http.Post(fullURL, "application/json", bytes.NewReader(requestBody))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API responded with status %s", resp.Status)
	}

	apiResponse := envelopeResponse{Result: deferredResult{unmarshalCb: resultCb}}
	if err = json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return err
	}
	if apiResponse.Error != "ok" {
		return apiResponse.Error
	}
	return nil
}

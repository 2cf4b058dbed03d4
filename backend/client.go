package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"

	"github.com/arcnetwork/arc-processing/util"
)

// Relative URLs of ARC backend endpoints consumed by the processing app
const (
	LoginURL             = "/api/login/"
	LogoutURL            = "/api/logout/"
	FaceAuthURL          = "/api/face-auth/"
	TransactionsURL      = "/api/transactions/"
	TransactionCancelURL = "/api/transactions/cancel/"
	MerchantPaymentURL   = "/api/merchant/payment/"
	MerchantInfoURL      = "/api/merchant/info/"
	PortfolioURL         = "/api/portfolio/"
)

// ErrNotAuthenticated is returned for requests that require a bearer token
// when none is given. Callers redirect to login instead of retrying
var ErrNotAuthenticated = errors.New("No auth token, login required")

// APIError is an error reported by backend in the error field of a response
// body
type APIError string

func (err APIError) Error() string {
	return string(err)
}

// Client makes authenticated requests to the ARC REST backend. It is the
// only way the processing app talks to backend: login, face verification,
// transaction create/cancel and read-only wallet data all go through it
type Client struct {
	apiBaseURL string
	httpClient *http.Client
}

// NewClient creates new instance of backend API client
func NewClient(apiBaseURL string) *Client {
	return &Client{
		apiBaseURL: apiBaseURL,
		httpClient: http.DefaultClient,
	}
}

func (cli *Client) sendRequest(method, relativeURL, token string, request interface{}, response interface{}) error {
	var requestBody io.Reader

	if request != nil {
		requestBodyJSON, err := json.Marshal(request)
		if err != nil {
			return err
		}
		requestBody = bytes.NewReader(requestBodyJSON)
	}

	fullURL, err := util.URLJoin(cli.apiBaseURL, relativeURL)

	if err != nil {
		return err
	}

	req, err := http.NewRequest(method, fullURL, requestBody)

	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := cli.httpClient.Do(req)

	if err != nil {
		return err
	}

	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)

	if err != nil {
		return err
	}

	var errorResponse struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errorResponse); err == nil {
		if errorResponse.Error != "" {
			return APIError(errorResponse.Error)
		}
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf(
			"Backend replied with code %d to %s request to %s",
			resp.StatusCode, method, relativeURL,
		)
	}

	if response == nil {
		return nil
	}
	return json.Unmarshal(body, response)
}

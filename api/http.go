package api

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arcnetwork/arc-processing/arc"
	"github.com/arcnetwork/arc-processing/payment/types"
)

const (
	OpenTabURL           = "/open_tab"
	TriggerPaymentURL    = "/trigger_payment"
	PaymentStatusURL     = "/payment_status"
	ClearPaymentBadgeURL = "/clear_payment_badge"
	CloseExtensionTabURL = "/close_extension_tab"
	GetEventsURL         = "/get_events"
	MetricsURL           = "/metrics"
)

// OpenTabRequest describes data sent by client in /open_tab request. URL may
// be empty, in which case the popup surface URL is opened
type OpenTabRequest struct {
	URL string `json:"url,omitempty"`
}

// TriggerPaymentRequest describes data sent by client in /trigger_payment
// request
type TriggerPaymentRequest struct {
	Amount arc.Amount `json:"amount"`
}

// SuccessResult acknowledges a request that has no other data to return
type SuccessResult struct {
	Success bool `json:"success"`
}

// PaymentStatusResult acknowledges that a status notification was accepted
// for relay to the merchant page
type PaymentStatusResult struct {
	StatusSent bool `json:"statusSent"`
}

// CloseTabResult acknowledges a /close_extension_tab request
type CloseTabResult struct {
	Closed bool `json:"closed"`
}

type HTTPAPIResponseError string

func (err HTTPAPIResponseError) Error() string {
	return string(err)
}

type GenericHTTPAPIResponse struct {
	Error HTTPAPIResponseError `json:"error"`
}

type httpAPIResponse struct {
	GenericHTTPAPIResponse
	Result interface{} `json:"result"`
}

func (s *Server) respond(response http.ResponseWriter, data interface{}, err error) {
	var responseBody []byte
	if err != nil {
		responseBody, err = json.Marshal(httpAPIResponse{
			GenericHTTPAPIResponse: GenericHTTPAPIResponse{
				Error: HTTPAPIResponseError(err.Error()),
			}},
		)
		if err != nil {
			panic("Failed to marshal error response for error " + err.Error())
		}
		_, err = response.Write(responseBody)
		if err != nil {
			panic(fmt.Sprintf(
				"Failed to write error response %q: %s",
				responseBody,
				err,
			))
		}
		return
	}
	responseBody, err = json.Marshal(httpAPIResponse{
		GenericHTTPAPIResponse: GenericHTTPAPIResponse{Error: "ok"},
		Result:                 data,
	})
	if err != nil {
		panic("Failed to marshal ok response for error " + err.Error())
	}
	_, err = response.Write(responseBody)
	if err != nil {
		panic(fmt.Sprintf(
			"Failed to write ok response %q: %s",
			responseBody,
			err,
		))
	}
}

func (s *Server) openTab(response http.ResponseWriter, request *http.Request) {
	var req OpenTabRequest
	var body []byte
	var err error

	if body, err = ioutil.ReadAll(request.Body); err != nil {
		s.respond(response, nil, err)
		return
	}
	if len(body) > 0 {
		if err = json.Unmarshal(body, &req); err != nil {
			s.respond(response, nil, err)
			return
		}
	}
	result, err := s.coordinator.OpenTab(req.URL)
	if err != nil {
		s.respond(response, nil, err)
		return
	}
	s.respond(response, result, nil)
}

func (s *Server) triggerPayment(response http.ResponseWriter, request *http.Request) {
	var req TriggerPaymentRequest

	if err := json.NewDecoder(request.Body).Decode(&req); err != nil {
		s.respond(response, nil, err)
		return
	}
	if err := s.coordinator.TriggerPayment(req.Amount); err != nil {
		s.respond(response, nil, err)
		return
	}
	s.respond(response, SuccessResult{Success: true}, nil)
}

func (s *Server) paymentStatus(response http.ResponseWriter, request *http.Request) {
	var notification types.StatusNotification

	if err := json.NewDecoder(request.Body).Decode(&notification); err != nil {
		s.respond(response, nil, err)
		return
	}
	if notification.Status == types.SuccessNotification && notification.TransactionID == "" {
		s.respond(response, nil, HTTPAPIResponseError(
			"Success status notification must carry a transaction id",
		))
		return
	}
	s.coordinator.RelayStatus(notification)
	s.respond(response, PaymentStatusResult{StatusSent: true}, nil)
}

func (s *Server) clearPaymentBadge(response http.ResponseWriter, request *http.Request) {
	s.coordinator.ClearBadge()
	s.respond(response, SuccessResult{Success: true}, nil)
}

func (s *Server) closeExtensionTab(response http.ResponseWriter, request *http.Request) {
	s.coordinator.CloseTab()
	s.respond(response, CloseTabResult{Closed: true}, nil)
}

func (s *Server) getEvents(response http.ResponseWriter, request *http.Request) {
	var body []byte
	var err error
	var seq int
	var subscription SubscribeMessage

	if body, err = ioutil.ReadAll(request.Body); err != nil {
		s.respond(response, nil, err)
		return
	}
	if len(body) > 0 {
		if err = json.Unmarshal(body, &subscription); err != nil {
			s.respond(response, nil, err)
			return
		}
		seq = subscription.Seq
	}
	storedEvents, err := s.eventBroker.GetEventsFromSeq(seq)

	if err != nil {
		s.respond(response, nil, err)
		return
	}
	s.respond(response, storedEvents, nil)
}

func (s *Server) initHTTPAPIServer() {
	m := s.httpServer.Handler.(*http.ServeMux)
	m.HandleFunc(OpenTabURL, s.openTab)
	m.HandleFunc(TriggerPaymentURL, s.triggerPayment)
	m.HandleFunc(PaymentStatusURL, s.paymentStatus)
	m.HandleFunc(ClearPaymentBadgeURL, s.clearPaymentBadge)
	m.HandleFunc(CloseExtensionTabURL, s.closeExtensionTab)
	m.HandleFunc(GetEventsURL, s.getEvents)
	m.Handle(MetricsURL, promhttp.Handler())
}

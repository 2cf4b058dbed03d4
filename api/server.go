package api

import (
	"log"
	"net/http"

	"github.com/arcnetwork/arc-processing/coordinator"
	"github.com/arcnetwork/arc-processing/events"
)

// Server runs http and websocket servers providing API. All merchant
// interaction with processing app goes through it
type Server struct {
	coordinator   *coordinator.Coordinator
	eventBroker   events.EventBroker
	listenAddress string
	httpServer    *http.Server
}

// NewServer creates new instance of API server
func NewServer(listenAddress string, paymentCoordinator *coordinator.Coordinator, eventBroker events.EventBroker) *Server {
	httpServer := &http.Server{
		Addr:    listenAddress,
		Handler: http.NewServeMux(),
	}
	server := &Server{
		coordinator:   paymentCoordinator,
		eventBroker:   eventBroker,
		listenAddress: listenAddress,
		httpServer:    httpServer,
	}
	server.initHTTPAPIServer()
	server.initWebsocketAPIServer()
	return server
}

// Run starts HTTP and websocket server
func (s *Server) Run() error {
	log.Printf("Starting API server on %s", s.listenAddress)
	return s.httpServer.ListenAndServe()
}

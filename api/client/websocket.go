package client

import (
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/arcnetwork/arc-processing/api"
)

const closeHandshakeTimeout = time.Second

// NewWebsocketClient connects to the event feed websocket, subscribes from
// startSeq and calls messageCb for every message the server pushes. Closing
// the returned interrupt channel starts a clean shutdown; the done channel is
// closed once the connection is finished
func NewWebsocketClient(apiURL string, startSeq int, messageCb func([]byte)) (chan<- struct{}, <-chan struct{}, error) {
	wsURL, err := url.Parse(apiURL)
	if err != nil {
		return nil, nil, err
	}
	wsURL.Scheme = strings.Replace(wsURL.Scheme, "http", "ws", 1)
	wsURL.Path = "/ws"

	log.Printf("Connecting to %s", wsURL)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return nil, nil, err
	}

	interrupt := make(chan struct{}, 1)
	readerDone := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(readerDone)
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				log.Println("read:", err)
				return
			}
			messageCb(message)
		}
	}()

	go func() {
		defer close(done)
		defer conn.Close()

		if err := conn.WriteJSON(api.SubscribeMessage{Seq: startSeq}); err != nil {
			log.Println("write subscribe message:", err)
			return
		}

		select {
		case <-readerDone:
		case <-interrupt:
			// Ask the server to close and give it a moment to do so
			closeMessage := websocket.FormatCloseMessage(
				websocket.CloseNormalClosure, "",
			)
			if err := conn.WriteMessage(websocket.CloseMessage, closeMessage); err != nil {
				log.Println("write close:", err)
				return
			}
			select {
			case <-readerDone:
			case <-time.After(closeHandshakeTimeout):
			}
		}
	}()
	return interrupt, done, nil
}

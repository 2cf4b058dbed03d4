package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"time"
)

func marshalFlattenedEvent(event *NotificationWithSeq) []byte {
	notificationDataJSON, err := json.Marshal(event.Data)
	if err != nil {
		panic(
			fmt.Sprintf(
				"Error: could not json-encode notification for webhook: %v",
				err,
			),
		)

	}

	var flatNotificationData map[string]interface{}
	err = json.Unmarshal(notificationDataJSON, &flatNotificationData)
	if err != nil {
		panic(
			fmt.Sprintf(
				"Error: could not json-decode notificationDataJSON: %v",
				err,
			),
		)
	}

	flatNotificationData["seq"] = event.Seq
	flatNotificationData["type"] = event.Type

	flatNotificationJSON, err := json.Marshal(flatNotificationData)
	if err != nil {
		panic(
			fmt.Sprintf(
				"Error: could not json-encode flat notification: %s",
				err,
			),
		)
	}

	return flatNotificationJSON
}

func (e *eventBroker) sendDataToCallback(event *NotificationWithSeq) error {
	data := marshalFlattenedEvent(event)
	resp, err := http.Post(
		e.callbackURL,
		"application/json",
		bytes.NewReader(data),
	)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == 200 {
		return nil
	}

	errorText := fmt.Sprintf(
		"Got response with code %d calling merchant callback %s",
		resp.StatusCode,
		e.callbackURL,
	)
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		errorText += " also failed to read response body " + err.Error()
	} else {
		errorText += " server replied " + string(body)
	}

	return errors.New(errorText)
}

func (e *eventBroker) handleCallbackError(event *NotificationWithSeq, err error) bool {
	retry := true
	msg := "Warning: error calling merchant callback trying to deliver " +
		"event %+v: %s."
	switch {
	case e.callbackBackoff <= 0:
		msg += " Will retry endlessly."
	case e.callbackRetries >= e.callbackBackoff:
		msg += " Retried too many times. Giving up."
		retry = false
	default:
		msg += fmt.Sprintf(
			" Will retry %d more times, next attempt after %f seconds",
			e.callbackBackoff-e.callbackRetries-1,
			e.callbackRetryDelay.Seconds(),
		)
	}

	log.Printf(msg, event, err)

	return retry
}

// eventConcernsMerchant tells whether event should be delivered to the
// merchant HTTP callback. Badge and tab bookkeeping events are internal to
// the extension; merchant pages only care about payment lifecycle
func eventConcernsMerchant(event *NotificationWithSeq) bool {
	switch event.Type {
	case PaymentTriggeredEvent, PaymentStatusEvent:
		return true
	}
	return false
}

func (e *eventBroker) sendCallbackNotifications(isRetry bool) {
	if e.callbackURL == "" {
		return
	}
	// While a retry is scheduled, ordinary triggers are ignored so the
	// backoff schedule is not disturbed
	if e.callbackIsRetrying && !isRetry {
		return
	}
	if isRetry {
		e.callbackIsRetrying = false
	}

	seq, err := e.storage.GetLastCallbackSentSeq()
	if err != nil {
		log.Printf(
			"Error: event broker: failed to get callback cursor: %v", err,
		)
		return
	}
	events, err := e.GetEventsFromSeq(seq + 1)
	if err != nil {
		log.Printf(
			"Error: event broker: failed to fetch events for callback: %v",
			err,
		)
		return
	}
	for _, event := range events {
		if !eventConcernsMerchant(event) {
			err = e.storage.StoreLastCallbackSentSeq(event.Seq)
			if err != nil {
				log.Printf(
					"Error: event broker: failed to store callback "+
						"cursor: %v", err,
				)
				return
			}
			continue
		}
		err = e.sendDataToCallback(event)
		e.callbackRetries++
		e.callbackRetryDelay += time.Second
		if err == nil {
			e.callbackRetries = 0
			e.callbackRetryDelay = 0

			err = e.storage.StoreLastCallbackSentSeq(event.Seq)
			if err != nil {
				log.Printf(
					"Error: event broker: failed to store callback "+
						"cursor: %v", err,
				)
				return
			}
			continue
		}

		retry := e.handleCallbackError(event, err)

		if retry {
			e.callbackIsRetrying = true
			time.AfterFunc(
				e.callbackRetryDelay,
				e.triggerCallbackNotificationRetry,
			)
			return
		}

		// Giving up on this event: move the cursor past it so that later
		// events are still delivered
		e.callbackRetries = 0
		e.callbackRetryDelay = 0
		err = e.storage.StoreLastCallbackSentSeq(event.Seq)
		if err != nil {
			log.Printf(
				"Error: event broker: failed to store callback cursor: %v",
				err,
			)
			return
		}
	}
}

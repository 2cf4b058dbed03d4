package coordinator

import (
	"log"

	"github.com/arcnetwork/arc-processing/browser"
	"github.com/arcnetwork/arc-processing/events"
	"github.com/arcnetwork/arc-processing/payment/types"
)

// OpenTabResult is the response to an OpenTab request. Exactly one of Opened
// and Reused is true
type OpenTabResult struct {
	Opened bool `json:"opened,omitempty"`
	Reused bool `json:"reused,omitempty"`
	TabID  int  `json:"tabId"`
}

type internalOpenTabRequest struct {
	url    string
	result chan openTabOutcome
}

type openTabOutcome struct {
	result *OpenTabResult
	err    error
}

type internalCloseRequest struct {
	result chan struct{}
}

// OpenTab opens the extension surface in a tab, or reactivates and navigates
// an existing surface tab if one is already open. Given url may be empty, in
// which case the popup surface URL is used. At most one popup-surface tab
// exists app-wide; a race between concurrent triggers can still create two,
// which is an accepted limitation
func (c *Coordinator) OpenTab(url string) (*OpenTabResult, error) {
	resultCh := make(chan openTabOutcome, 1)
	c.openTabQueue <- internalOpenTabRequest{url: url, result: resultCh}
	outcome := <-resultCh
	return outcome.result, outcome.err
}

func (c *Coordinator) handleOpenTab(req internalOpenTabRequest) {
	targetURL := req.url
	if targetURL == "" {
		targetURL = c.popupURL
	}

	existing := c.browser.QueryTabs([]string{c.popupURL})
	if len(existing) > 0 {
		tab := existing[0]
		err := c.browser.UpdateTab(tab.ID, targetURL, true)
		if err != nil {
			req.result <- openTabOutcome{err: err}
			return
		}
		c.notify(events.TabOpenedEvent, types.TabNotification{
			TabID:  tab.ID,
			Reused: true,
		})
		req.result <- openTabOutcome{
			result: &OpenTabResult{Reused: true, TabID: tab.ID},
		}
		return
	}

	tab, err := c.browser.CreateTab(targetURL, true)
	if err != nil {
		req.result <- openTabOutcome{err: err}
		return
	}
	c.trackedTabID = tab.ID
	c.notify(events.TabOpenedEvent, types.TabNotification{TabID: tab.ID})
	req.result <- openTabOutcome{
		result: &OpenTabResult{Opened: true, TabID: tab.ID},
	}
}

// CloseTab closes the tracked extension surface. When the tracked reference
// was lost (for example due to process restart), all popup-surface tabs are
// searched for and closed instead. Closing an already-closed tab is not an
// error
func (c *Coordinator) CloseTab() {
	resultCh := make(chan struct{}, 1)
	c.closeTabQueue <- internalCloseRequest{result: resultCh}
	<-resultCh
}

func (c *Coordinator) handleCloseTab(req internalCloseRequest) {
	defer func() { req.result <- struct{}{} }()

	if c.trackedTabID != 0 {
		tabID := c.trackedTabID
		err := c.browser.RemoveTab(tabID)
		// Reference is dropped even when closing failed, otherwise a dead
		// tab id would shadow the search fallback forever
		c.trackedTabID = 0
		if err != nil && err != browser.ErrNoSuchTab {
			log.Printf(
				"Error: coordinator: failed to close tab %d: %v", tabID, err,
			)
			return
		}
		c.notify(events.TabClosedEvent, types.TabNotification{TabID: tabID})
		return
	}

	// Fallback: close any extension surface tabs
	for _, tab := range c.browser.QueryTabs([]string{c.popupURL}) {
		err := c.browser.RemoveTab(tab.ID)
		if err != nil && err != browser.ErrNoSuchTab {
			log.Printf(
				"Error: coordinator: failed to close tab %d: %v",
				tab.ID, err,
			)
			continue
		}
		c.notify(events.TabClosedEvent, types.TabNotification{TabID: tab.ID})
	}
}

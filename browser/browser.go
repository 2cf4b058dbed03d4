package browser

import (
	"errors"

	"github.com/arcnetwork/arc-processing/payment/types"
)

// Tab describes one browser tab as seen by the extension
type Tab struct {
	ID     int    `json:"id"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

// Window describes a browser window. Extension popup windows contain exactly
// one tab
type Window struct {
	ID   int    `json:"id"`
	Tabs []*Tab `json:"tabs"`
}

var (
	// ErrNoSuchTab is returned by tab operations referring to a tab that
	// does not exist (already closed or never created)
	ErrNoSuchTab = errors.New("No tab with such id")

	// ErrNoListener is returned by SendMessage when the target page has no
	// message listener registered. Callers recover by falling back to
	// InjectBroadcast
	ErrNoListener = errors.New("Receiving end does not exist")
)

// Browser abstracts the extension runtime surface: tab and window management,
// the toolbar badge and message delivery into page contexts. The processing
// app only talks to the runtime through this interface, like it talks to the
// ARC backend only through the backend client
type Browser interface {
	QueryTabs(urlPrefixes []string) []*Tab
	ActiveTab() *Tab
	CreateTab(url string, active bool) (*Tab, error)
	UpdateTab(tabID int, url string, active bool) error
	RemoveTab(tabID int) error
	CreateWindow(url string, width, height int) (*Window, error)

	// SendMessage delivers a payment status notification to the page's
	// registered message listener. It fails with ErrNoListener when the
	// page never registered one
	SendMessage(tabID int, notification types.StatusNotification) error

	// InjectBroadcast rebroadcasts a payment status notification through
	// the page's own messaging channel by injecting a one-shot script.
	// It works even when no direct listener exists
	InjectBroadcast(tabID int, notification types.StatusNotification) error

	SetBadge(text string, color string)
	ClearBadge()
	Badge() string
}

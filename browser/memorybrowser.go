package browser

import (
	"log"
	"strings"
	"sync"

	"github.com/arcnetwork/arc-processing/payment/types"
)

const messageChannelSize = 16

// MemoryBrowser is an in-process implementation of Browser. Tabs are records
// in a map, the badge is a pair of strings and message delivery goes through
// per-tab channels: a direct-message channel that only exists once a listener
// registered via Listen, and an always-present page-broadcast channel fed by
// InjectBroadcast. It backs tests and single-process deployments where the
// merchant bridge runs in the same process
type MemoryBrowser struct {
	mutex sync.Mutex

	tabs        map[int]*Tab
	windows     map[int]*Window
	listeners   map[int]chan types.StatusNotification
	pageStreams map[int]chan types.StatusNotification
	nextID      int

	badgeText  string
	badgeColor string
}

func NewMemoryBrowser() *MemoryBrowser {
	return &MemoryBrowser{
		tabs:        make(map[int]*Tab),
		windows:     make(map[int]*Window),
		listeners:   make(map[int]chan types.StatusNotification),
		pageStreams: make(map[int]chan types.StatusNotification),
		nextID:      1,
	}
}

func (b *MemoryBrowser) QueryTabs(urlPrefixes []string) []*Tab {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	result := make([]*Tab, 0)
	for _, tab := range b.tabs {
		for _, prefix := range urlPrefixes {
			if strings.HasPrefix(tab.URL, prefix) {
				result = append(result, tab)
				break
			}
		}
	}
	return result
}

func (b *MemoryBrowser) ActiveTab() *Tab {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for _, tab := range b.tabs {
		if tab.Active {
			return tab
		}
	}
	return nil
}

func (b *MemoryBrowser) createTabLocked(url string, active bool) *Tab {
	if active {
		for _, tab := range b.tabs {
			tab.Active = false
		}
	}
	tab := &Tab{ID: b.nextID, URL: url, Active: active}
	b.nextID++
	b.tabs[tab.ID] = tab
	b.pageStreams[tab.ID] = make(chan types.StatusNotification, messageChannelSize)
	return tab
}

func (b *MemoryBrowser) CreateTab(url string, active bool) (*Tab, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return b.createTabLocked(url, active), nil
}

func (b *MemoryBrowser) UpdateTab(tabID int, url string, active bool) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	tab, ok := b.tabs[tabID]
	if !ok {
		return ErrNoSuchTab
	}
	if url != "" {
		tab.URL = url
	}
	if active {
		for _, other := range b.tabs {
			other.Active = false
		}
		tab.Active = true
	}
	return nil
}

func (b *MemoryBrowser) RemoveTab(tabID int) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if _, ok := b.tabs[tabID]; !ok {
		return ErrNoSuchTab
	}
	delete(b.tabs, tabID)
	if listener, ok := b.listeners[tabID]; ok {
		close(listener)
		delete(b.listeners, tabID)
	}
	if stream, ok := b.pageStreams[tabID]; ok {
		close(stream)
		delete(b.pageStreams, tabID)
	}
	return nil
}

func (b *MemoryBrowser) CreateWindow(url string, width, height int) (*Window, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	tab := b.createTabLocked(url, true)
	window := &Window{ID: b.nextID, Tabs: []*Tab{tab}}
	b.nextID++
	b.windows[window.ID] = window
	return window, nil
}

func (b *MemoryBrowser) SendMessage(tabID int, notification types.StatusNotification) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if _, ok := b.tabs[tabID]; !ok {
		return ErrNoSuchTab
	}
	listener, ok := b.listeners[tabID]
	if !ok {
		return ErrNoListener
	}
	select {
	case listener <- notification:
		return nil
	default:
		log.Printf(
			"Warning: browser: dropping message to tab %d, listener "+
				"channel is full", tabID,
		)
		return ErrNoListener
	}
}

func (b *MemoryBrowser) InjectBroadcast(tabID int, notification types.StatusNotification) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	stream, ok := b.pageStreams[tabID]
	if !ok {
		return ErrNoSuchTab
	}
	select {
	case stream <- notification:
		return nil
	default:
		return ErrNoListener
	}
}

// Listen registers a direct-message listener for given tab, making
// SendMessage to that tab succeed. It models a page script installing its
// runtime message handler
func (b *MemoryBrowser) Listen(tabID int) (<-chan types.StatusNotification, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if _, ok := b.tabs[tabID]; !ok {
		return nil, ErrNoSuchTab
	}
	listener, ok := b.listeners[tabID]
	if !ok {
		listener = make(chan types.StatusNotification, messageChannelSize)
		b.listeners[tabID] = listener
	}
	return listener, nil
}

// PageMessages returns the page-broadcast channel of given tab, which
// receives notifications delivered through InjectBroadcast
func (b *MemoryBrowser) PageMessages(tabID int) (<-chan types.StatusNotification, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	stream, ok := b.pageStreams[tabID]
	if !ok {
		return nil, ErrNoSuchTab
	}
	return stream, nil
}

func (b *MemoryBrowser) SetBadge(text string, color string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.badgeText = text
	b.badgeColor = color
}

func (b *MemoryBrowser) ClearBadge() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.badgeText = ""
	b.badgeColor = ""
}

func (b *MemoryBrowser) Badge() string {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return b.badgeText
}

package coordinator

import (
	"testing"
	"time"

	"github.com/arcnetwork/arc-processing/arc"
	"github.com/arcnetwork/arc-processing/browser"
	"github.com/arcnetwork/arc-processing/events"
	"github.com/arcnetwork/arc-processing/payment/types"
	settingstestutil "github.com/arcnetwork/arc-processing/settings/testutil"
	"github.com/arcnetwork/arc-processing/storage"
)

const testPopupURL = "arc://popup"
const testMerchantOrigin = "https://shop.example"
const testPendingBadge = "PAY"

var testAmount = arc.Must(arc.AmountFromStringedFloat("12.5"))

func newTestCoordinator(t *testing.T) (*Coordinator, *browser.MemoryBrowser, storage.KVStore) {
	t.Helper()

	s := &settingstestutil.SettingsMock{Data: map[string]interface{}{
		"popup.url":           testPopupURL,
		"popup.width":         400,
		"popup.height":        600,
		"merchant.origins":    []string{testMerchantOrigin},
		"badge.pending.text":  testPendingBadge,
		"badge.pending.color": "#FF6B35",
	}}
	memoryBrowser := browser.NewMemoryBrowser()
	kv := storage.NewKVStore(nil)
	eventBroker := events.NewEventBroker(s, events.NewEventStorage(nil))

	c := NewCoordinator(s, memoryBrowser, kv, eventBroker)
	go c.Run()
	t.Cleanup(c.Stop)

	return c, memoryBrowser, kv
}

func waitForPopupTab(t *testing.T, memoryBrowser *browser.MemoryBrowser) *browser.Tab {
	t.Helper()

	deadline := time.Now().Add(1 * time.Second)
	for time.Now().Before(deadline) {
		tabs := memoryBrowser.QueryTabs([]string{testPopupURL})
		if len(tabs) > 0 {
			return tabs[0]
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("Timed out waiting for popup tab to be created")
	return nil
}

func TestOpenTabCreatesAndReuses(t *testing.T) {
	c, memoryBrowser, _ := newTestCoordinator(t)

	first, err := c.OpenTab("")
	if err != nil {
		t.Fatal(err)
	}
	if !first.Opened || first.Reused {
		t.Fatalf("Expected first request to open a new tab, got %+v", first)
	}

	second, err := c.OpenTab("")
	if err != nil {
		t.Fatal(err)
	}
	if !second.Reused || second.Opened {
		t.Fatalf("Expected second request to reuse the tab, got %+v", second)
	}
	if second.TabID != first.TabID {
		t.Fatalf("Expected reused tab id %d, got %d",
			first.TabID, second.TabID)
	}

	if got := len(memoryBrowser.QueryTabs([]string{testPopupURL})); got != 1 {
		t.Fatalf("Expected exactly one popup tab, got %d", got)
	}
}

func TestTriggerPaymentPersistsAmountAndSetsBadge(t *testing.T) {
	c, memoryBrowser, kv := newTestCoordinator(t)

	if err := c.TriggerPayment(testAmount); err != nil {
		t.Fatal(err)
	}

	amount, found, err := storage.ConsumeOrderAmount(kv)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("Expected order amount to be persisted before ack")
	}
	if amount != testAmount {
		t.Fatalf("Expected persisted amount %s, got %s", testAmount, amount)
	}

	if got := memoryBrowser.Badge(); got != testPendingBadge {
		t.Fatalf("Expected badge %q, got %q", testPendingBadge, got)
	}

	waitForPopupTab(t, memoryBrowser)
}

func TestTriggerPaymentRejectsNonPositiveAmount(t *testing.T) {
	c, memoryBrowser, kv := newTestCoordinator(t)

	if err := c.TriggerPayment(arc.Amount(0)); err == nil {
		t.Fatal("Expected triggering zero amount to fail")
	}

	if _, found, _ := storage.ConsumeOrderAmount(kv); found {
		t.Fatal("Expected no amount to be persisted for rejected trigger")
	}
	if got := memoryBrowser.Badge(); got != "" {
		t.Fatalf("Expected badge to stay clear, got %q", got)
	}
}

func TestRelayStatusDirectDelivery(t *testing.T) {
	c, memoryBrowser, _ := newTestCoordinator(t)

	tab, err := memoryBrowser.CreateTab(testMerchantOrigin+"/checkout", true)
	if err != nil {
		t.Fatal(err)
	}
	messages, err := memoryBrowser.Listen(tab.ID)
	if err != nil {
		t.Fatal(err)
	}

	sent := types.SuccessStatusNotification(testAmount, "abc123")
	c.RelayStatus(sent)

	select {
	case got := <-messages:
		if got.Key() != sent.Key() {
			t.Fatalf("Expected notification %s, got %s", sent.Key(), got.Key())
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Timed out waiting for direct delivery")
	}
}

func TestRelayStatusFallsBackToBroadcast(t *testing.T) {
	c, memoryBrowser, _ := newTestCoordinator(t)

	// No listener registered: direct delivery fails, the injected
	// rebroadcast path must carry the notification
	tab, err := memoryBrowser.CreateTab(testMerchantOrigin+"/checkout", true)
	if err != nil {
		t.Fatal(err)
	}
	pageMessages, err := memoryBrowser.PageMessages(tab.ID)
	if err != nil {
		t.Fatal(err)
	}

	sent := types.SuccessStatusNotification(testAmount, "abc123")
	c.RelayStatus(sent)

	select {
	case got := <-pageMessages:
		if got.Key() != sent.Key() {
			t.Fatalf("Expected notification %s, got %s", sent.Key(), got.Key())
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Timed out waiting for fallback delivery")
	}
}

func TestRelayStatusBadgeLifecycle(t *testing.T) {
	c, memoryBrowser, _ := newTestCoordinator(t)

	if _, err := memoryBrowser.CreateTab(testMerchantOrigin, true); err != nil {
		t.Fatal(err)
	}

	if err := c.TriggerPayment(testAmount); err != nil {
		t.Fatal(err)
	}
	if got := memoryBrowser.Badge(); got != testPendingBadge {
		t.Fatalf("Expected badge %q after trigger, got %q",
			testPendingBadge, got)
	}

	// Pending status keeps the badge
	c.RelayStatus(types.StatusNotification{Status: types.PendingNotification})
	if got := memoryBrowser.Badge(); got != testPendingBadge {
		t.Fatalf("Expected badge to survive pending status, got %q", got)
	}

	c.RelayStatus(types.SuccessStatusNotification(testAmount, "abc123"))
	if got := memoryBrowser.Badge(); got != "" {
		t.Fatalf("Expected badge to be cleared by terminal status, got %q",
			got)
	}
}

func TestClearBadgeIsIdempotent(t *testing.T) {
	c, memoryBrowser, _ := newTestCoordinator(t)

	c.ClearBadge()
	c.ClearBadge()

	if got := memoryBrowser.Badge(); got != "" {
		t.Fatalf("Expected badge to be clear, got %q", got)
	}
}

func TestCloseTabClosesTrackedTab(t *testing.T) {
	c, memoryBrowser, _ := newTestCoordinator(t)

	result, err := c.OpenTab("")
	if err != nil {
		t.Fatal(err)
	}

	c.CloseTab()

	if got := len(memoryBrowser.QueryTabs([]string{testPopupURL})); got != 0 {
		t.Fatalf("Expected popup tab %d to be closed, %d tabs remain",
			result.TabID, got)
	}

	// Closing again is not an error
	c.CloseTab()
}

func TestCloseTabFallsBackToSearch(t *testing.T) {
	c, memoryBrowser, _ := newTestCoordinator(t)

	// Tab created outside the coordinator, so no tracked reference exists
	if _, err := memoryBrowser.CreateTab(testPopupURL, true); err != nil {
		t.Fatal(err)
	}

	c.CloseTab()

	if got := len(memoryBrowser.QueryTabs([]string{testPopupURL})); got != 0 {
		t.Fatalf("Expected search fallback to close popup tabs, %d remain",
			got)
	}
}

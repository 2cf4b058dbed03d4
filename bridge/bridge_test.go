package bridge

import (
	"errors"
	"testing"
	"time"

	"github.com/arcnetwork/arc-processing/arc"
	"github.com/arcnetwork/arc-processing/browser"
	"github.com/arcnetwork/arc-processing/payment/types"
)

const testMerchantPageURL = "https://shop.example/checkout"
const testTxHash = "abc123"

var testAmount = arc.Must(arc.AmountFromStringedFloat("12.5"))

type initiatorMock struct {
	triggerErr error
	triggered  []arc.Amount
}

func (i *initiatorMock) TriggerPayment(amount arc.Amount) error {
	if i.triggerErr != nil {
		return i.triggerErr
	}
	i.triggered = append(i.triggered, amount)
	return nil
}

func newTestBridge(t *testing.T, initiator *initiatorMock) (*Bridge, *browser.MemoryBrowser, *browser.Tab) {
	t.Helper()

	memoryBrowser := browser.NewMemoryBrowser()
	tab, err := memoryBrowser.CreateTab(testMerchantPageURL, true)
	if err != nil {
		t.Fatal(err)
	}

	merchantBridge, err := NewBridge(memoryBrowser, initiator, tab.ID)
	if err != nil {
		t.Fatal(err)
	}
	go merchantBridge.Run()
	t.Cleanup(merchantBridge.Stop)

	return merchantBridge, memoryBrowser, tab
}

func TestBridgeResolvesOnTerminalStatus(t *testing.T) {
	initiator := &initiatorMock{}
	merchantBridge, memoryBrowser, tab := newTestBridge(t, initiator)

	if err := merchantBridge.RequestPayment(testAmount); err != nil {
		t.Fatal(err)
	}
	if len(initiator.triggered) != 1 || initiator.triggered[0] != testAmount {
		t.Fatalf("Expected payment trigger for %s, got %v",
			testAmount, initiator.triggered)
	}

	sent := types.SuccessStatusNotification(testAmount, testTxHash)
	if err := memoryBrowser.SendMessage(tab.ID, sent); err != nil {
		t.Fatal(err)
	}

	got, err := merchantBridge.AwaitResult(1 * time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if got.Key() != sent.Key() {
		t.Fatalf("Expected result %s, got %s", sent.Key(), got.Key())
	}
}

func TestBridgeDeduplicatesDualDelivery(t *testing.T) {
	merchantBridge, memoryBrowser, tab := newTestBridge(t, &initiatorMock{})

	if err := merchantBridge.RequestPayment(testAmount); err != nil {
		t.Fatal(err)
	}

	// The same notification arriving on both delivery paths must resolve
	// the pending payment exactly once
	sent := types.SuccessStatusNotification(testAmount, testTxHash)
	if err := memoryBrowser.SendMessage(tab.ID, sent); err != nil {
		t.Fatal(err)
	}
	if err := memoryBrowser.InjectBroadcast(tab.ID, sent); err != nil {
		t.Fatal(err)
	}

	if _, err := merchantBridge.AwaitResult(1 * time.Second); err != nil {
		t.Fatal(err)
	}

	if _, err := merchantBridge.AwaitResult(50 * time.Millisecond); err != ErrResultTimeout {
		t.Fatalf("Expected duplicate to be dropped, got %v", err)
	}
}

func TestBridgePendingDoesNotResolve(t *testing.T) {
	merchantBridge, memoryBrowser, tab := newTestBridge(t, &initiatorMock{})

	if err := merchantBridge.RequestPayment(testAmount); err != nil {
		t.Fatal(err)
	}

	pending := types.StatusNotification{Status: types.PendingNotification}
	if err := memoryBrowser.SendMessage(tab.ID, pending); err != nil {
		t.Fatal(err)
	}

	if _, err := merchantBridge.AwaitResult(50 * time.Millisecond); err != ErrResultTimeout {
		t.Fatalf("Expected pending status not to resolve payment, got %v",
			err)
	}

	cancelled := types.CancelledStatusNotification("User cancelled payment manually")
	if err := memoryBrowser.SendMessage(tab.ID, cancelled); err != nil {
		t.Fatal(err)
	}

	got, err := merchantBridge.AwaitResult(1 * time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != types.CancelledNotification {
		t.Fatalf("Expected cancelled result, got %s", got.Status)
	}
}

func TestBridgeRejectsConcurrentPayment(t *testing.T) {
	merchantBridge, _, _ := newTestBridge(t, &initiatorMock{})

	if err := merchantBridge.RequestPayment(testAmount); err != nil {
		t.Fatal(err)
	}
	if err := merchantBridge.RequestPayment(testAmount); err != ErrPaymentAlreadyPending {
		t.Fatalf("Expected ErrPaymentAlreadyPending, got %v", err)
	}
}

func TestBridgeTriggerFailureResetsPending(t *testing.T) {
	initiator := &initiatorMock{triggerErr: errors.New("processing down")}
	merchantBridge, _, _ := newTestBridge(t, initiator)

	if err := merchantBridge.RequestPayment(testAmount); err == nil {
		t.Fatal("Expected trigger failure to be returned")
	}

	initiator.triggerErr = nil
	if err := merchantBridge.RequestPayment(testAmount); err != nil {
		t.Fatalf("Expected retry after failed trigger to work, got %v", err)
	}
}

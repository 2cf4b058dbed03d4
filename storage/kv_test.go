package storage

import (
	"testing"

	"github.com/arcnetwork/arc-processing/arc"
)

func TestStoreAndConsumeOrderAmount(t *testing.T) {
	kv := NewKVStore(nil)

	amount := arc.Must(arc.AmountFromStringedFloat("12.5"))

	if err := StoreOrderAmount(kv, amount); err != nil {
		t.Fatal(err)
	}

	got, found, err := ConsumeOrderAmount(kv)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("Expected stored order amount to be found")
	}
	if got != amount {
		t.Fatalf("Expected consumed amount to be %s, got %s", amount, got)
	}

	// Consuming deletes the amount, second consume finds nothing
	_, found, err = ConsumeOrderAmount(kv)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("Expected order amount to be deleted after consumption")
	}
}

func TestStoreOrderAmountOverwrites(t *testing.T) {
	kv := NewKVStore(nil)

	first := arc.Must(arc.AmountFromStringedFloat("1"))
	second := arc.Must(arc.AmountFromStringedFloat("2.25"))

	if err := StoreOrderAmount(kv, first); err != nil {
		t.Fatal(err)
	}
	if err := StoreOrderAmount(kv, second); err != nil {
		t.Fatal(err)
	}

	got, found, err := ConsumeOrderAmount(kv)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("Expected stored order amount to be found")
	}
	if got != second {
		t.Fatalf("Expected last written amount %s to win, got %s",
			second, got)
	}
}

func TestStoreOrderAmountRejectsNonPositive(t *testing.T) {
	kv := NewKVStore(nil)

	if err := StoreOrderAmount(kv, arc.Amount(0)); err == nil {
		t.Fatal("Expected storing zero amount to fail")
	}
	if _, found, _ := ConsumeOrderAmount(kv); found {
		t.Fatal("Expected no amount to be stored after rejected write")
	}
}

func TestAuthToken(t *testing.T) {
	kv := NewKVStore(nil)

	token, err := GetAuthToken(kv)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		t.Fatalf("Expected no auth token initially, got %q", token)
	}

	if err := SetAuthToken(kv, "testtoken"); err != nil {
		t.Fatal(err)
	}
	token, err = GetAuthToken(kv)
	if err != nil {
		t.Fatal(err)
	}
	if token != "testtoken" {
		t.Fatalf("Expected auth token %q, got %q", "testtoken", token)
	}

	if err := ClearAuthToken(kv); err != nil {
		t.Fatal(err)
	}
	token, err = GetAuthToken(kv)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		t.Fatalf("Expected no auth token after clear, got %q", token)
	}
}

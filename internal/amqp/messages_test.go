package amqp

import "testing"

func TestPricesUpdatedMessageJSON(t *testing.T) {
	msg := NewPricesUpdatedMessage(24, "2023-12")
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	back, err := PricesUpdatedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Count != 24 || back.Latest != "2023-12" {
		t.Fatalf("got %+v", back)
	}

	if _, err := PricesUpdatedMessageFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid payload")
	}
}

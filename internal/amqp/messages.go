package amqp

import (
	"encoding/json"
	"time"
)

// PricesUpdatedMessage announces that the refresh worker wrote a new
// price snapshot. Consumers drop their cached price responses; the
// payload carries just enough to log what changed.
type PricesUpdatedMessage struct {
	Count     int       `json:"count"`  // number of snapshot rows
	Latest    string    `json:"latest"` // most recent month, "YYYY-MM"
	Timestamp time.Time `json:"timestamp"`
}

func NewPricesUpdatedMessage(count int, latest string) *PricesUpdatedMessage {
	return &PricesUpdatedMessage{
		Count:     count,
		Latest:    latest,
		Timestamp: time.Now(),
	}
}

func (m *PricesUpdatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func PricesUpdatedMessageFromJSON(data []byte) (*PricesUpdatedMessage, error) {
	var msg PricesUpdatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

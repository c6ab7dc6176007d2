package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CloudEvent is the envelope published for every domain event, loosely
// following the CloudEvents 1.0 attribute names.
type CloudEvent struct {
	ID          string          `json:"id"`
	Source      string          `json:"source"`
	SpecVersion string          `json:"specversion"`
	Type        string          `json:"type"`
	Time        time.Time       `json:"time"`
	Data        json.RawMessage `json:"data"`
}

// NewCloudEvent wraps data in a CloudEvent envelope.
func NewCloudEvent(source, eventType string, data interface{}) (*CloudEvent, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}
	return &CloudEvent{
		ID:          uuid.NewString(),
		Source:      source,
		SpecVersion: "1.0",
		Type:        eventType,
		Time:        time.Now().UTC(),
		Data:        payload,
	}, nil
}

// ParseCloudEvent decodes a raw Kafka message value into a CloudEvent.
func ParseCloudEvent(raw []byte) (CloudEvent, error) {
	var e CloudEvent
	if err := json.Unmarshal(raw, &e); err != nil {
		return CloudEvent{}, fmt.Errorf("failed to parse cloud event: %w", err)
	}
	return e, nil
}

// ParseData unmarshals the event payload into v.
func (e *CloudEvent) ParseData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

package realtime

import (
	"encoding/json"
	"fmt"
)

// Message is a single websocket frame in either direction.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// EncodeMessage builds the frame for event with payload as its data.
func EncodeMessage(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %q payload: %w", event, err)
	}
	return json.Marshal(Message{Event: event, Data: data})
}

// ErrorPayload is the data of an "error" event.
type ErrorPayload struct {
	Message string `json:"message"`
}

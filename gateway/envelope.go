// Package gateway is the per-connection protocol handler: it upgrades
// websockets, authenticates connections, routes inbound actions to the
// services, and fans results back out through broadcast groups.
package gateway

import (
	"encoding/json"
)

// Envelope frames every message on the wire, in both directions:
// a named event with a structured payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func marshalEnvelope(event string, payload any) ([]byte, error) {
	envelope := Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		envelope.Data = data
	}
	return json.Marshal(envelope)
}

package devtools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// MessageType identifies a stream message.
type MessageType string

const (
	MessageSnapshot MessageType = "snapshot"
	MessageChange   MessageType = "change"
	MessageRemoved  MessageType = "removed"
)

// Message is sent to stream clients as JSON.
type Message struct {
	Type    MessageType                `json:"type"`
	StoreID string                     `json:"storeId"`
	Store   string                     `json:"store"`
	Seq     uint64                     `json:"seq"`
	Key     string                     `json:"key,omitempty"`
	Value   json.RawMessage            `json:"value,omitempty"`
	Values  map[string]json.RawMessage `json:"values,omitempty"`
	Time    time.Time                  `json:"time"`
}

// StoreInfo describes a registered store.
type StoreInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Keys       []string  `json:"keys"`
	Clients    int       `json:"clients"`
	Changes    uint64    `json:"changes"`
	Registered time.Time `json:"registered"`
}

// StoreState is the body of GET /stores/{id}.
type StoreState struct {
	StoreInfo
	Values map[string]json.RawMessage `json:"values"`
}

// encodeValue returns v as JSON, or its type name as a JSON string when v
// cannot be encoded.
func encodeValue(v any) json.RawMessage {
	data, err := marshal(v)
	if err != nil {
		data, _ = marshal(fmt.Sprintf("<%T>", v))
	}
	return data
}

// marshal is json.Marshal without HTML escaping, so type names such as
// "<func()>" stay readable in the inspector.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func encodeValues(values map[string]any) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(values))
	for k, v := range values {
		out[k] = encodeValue(v)
	}
	return out
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

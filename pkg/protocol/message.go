// Package protocol defines the WebSocket messages that report changes to an
// image set. The web server sends them and web.Watch receives them.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/teslashibe/go-eyes/pkg/eyes"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Server → client messages
	TypeImages  MessageType = "images"  // Snapshot of every image
	TypeApplied MessageType = "applied" // Pipeline applied
	TypeAdded   MessageType = "added"   // Image added or replaced
	TypeRemoved MessageType = "removed" // Image removed
	TypeReset   MessageType = "reset"   // Images restored to originals
	TypeError   MessageType = "error"   // Request failed

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into v. A message without data
// leaves v untouched.
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("failed to parse message: missing type")
	}
	return &msg, nil
}

// ImagesData lists the key and current shape of every image.
type ImagesData struct {
	Images []eyes.ImageInfo `json:"images"`
}

// AppliedData reports a pipeline run and the resulting shapes.
type AppliedData struct {
	Ops    []string         `json:"ops"`
	Images []eyes.ImageInfo `json:"images"`
}

// AddedData reports an image inserted under Key.
type AddedData struct {
	Image eyes.ImageInfo `json:"image"`
}

// RemovedData lists the keys that are no longer tracked.
type RemovedData struct {
	Keys []eyes.Key `json:"keys"`
}

// ResetData lists the keys restored to their originals.
type ResetData struct {
	Keys []eyes.Key `json:"keys"`
}

// ErrorData describes a failed request.
type ErrorData struct {
	Op      string `json:"op,omitempty"`
	Message string `json:"message"`
}

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}

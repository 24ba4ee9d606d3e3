package protocol

import (
	"time"

	"github.com/teslashibe/go-eyes/pkg/eyes"
)

// NewImagesMessage creates a snapshot message.
func NewImagesMessage(infos []eyes.ImageInfo) (*Message, error) {
	if infos == nil {
		infos = []eyes.ImageInfo{}
	}
	return NewMessage(TypeImages, ImagesData{Images: infos})
}

// NewAppliedMessage creates a message for a completed pipeline.
func NewAppliedMessage(ops []string, infos []eyes.ImageInfo) (*Message, error) {
	return NewMessage(TypeApplied, AppliedData{Ops: ops, Images: infos})
}

// NewAddedMessage creates a message for an inserted image.
func NewAddedMessage(info eyes.ImageInfo) (*Message, error) {
	return NewMessage(TypeAdded, AddedData{Image: info})
}

// NewRemovedMessage creates a message for removed keys.
func NewRemovedMessage(keys ...eyes.Key) (*Message, error) {
	return NewMessage(TypeRemoved, RemovedData{Keys: keys})
}

// NewResetMessage creates a message for restored keys.
func NewResetMessage(keys ...eyes.Key) (*Message, error) {
	return NewMessage(TypeReset, ResetData{Keys: keys})
}

// NewErrorMessage creates an error message for op.
func NewErrorMessage(op string, err error) (*Message, error) {
	return NewMessage(TypeError, ErrorData{Op: op, Message: err.Error()})
}

// NewPingMessage creates a ping message stamped with the current time.
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: time.Now().UnixMilli(),
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// GetImagesData extracts a snapshot from a message
func (m *Message) GetImagesData() (*ImagesData, error) {
	var data ImagesData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetAppliedData extracts pipeline results from a message
func (m *Message) GetAppliedData() (*AppliedData, error) {
	var data AppliedData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetAddedData extracts an added image from a message
func (m *Message) GetAddedData() (*AddedData, error) {
	var data AddedData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetRemovedData extracts removed keys from a message
func (m *Message) GetRemovedData() (*RemovedData, error) {
	var data RemovedData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetResetData extracts reset keys from a message
func (m *Message) GetResetData() (*ResetData, error) {
	var data ResetData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetErrorData extracts an error from a message
func (m *Message) GetErrorData() (*ErrorData, error) {
	var data ErrorData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

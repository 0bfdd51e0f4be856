package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Channel string

const (
	ChannelLog         Channel = "log"
	ChannelChat        Channel = "chat"
	ChannelEmail       Channel = "email"
	ChannelFulfillment Channel = "fulfillment"
)

// DispatchFailure is published when a dispatcher could not complete its side effect.
type DispatchFailure struct {
	EventUUID     uuid.UUID       `json:"event_uuid"`
	InvoiceNumber string          `json:"invoice_number"`
	Channel       Channel         `json:"channel"`
	Error         string          `json:"error"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	Response      string          `json:"response,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

func (f *DispatchFailure) UUID() string {
	return f.EventUUID.String()
}

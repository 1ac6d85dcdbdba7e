package authgate

import (
	"encoding/json"
)

// EventType is the tag of an inbound event
type EventType string

const (
	// EventUserCreated is emitted by the provider when a user signs up
	EventUserCreated EventType = "user.created"
)

// InboundEvent is a verified webhook event. Data is decoded on demand
// according to Type.
type InboundEvent struct {
	Type   EventType       `json:"type"`
	Object string          `json:"object,omitempty"`
	Data   json.RawMessage `json:"data"`
}

// EmailAddress is one of the addresses registered for a user
type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// UserCreatedData is the payload of a user.created event
type UserCreatedData struct {
	ID                    string         `json:"id"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
}

// DecodeEvent decodes a raw payload into an InboundEvent.
func DecodeEvent(payload []byte) (*InboundEvent, error) {
	event := &InboundEvent{}
	if err := json.Unmarshal(payload, event); err != nil {
		return nil, ErrInvalidPayload
	}
	return event, nil
}

// UserCreated decodes the event data as a user.created payload.
func (e *InboundEvent) UserCreated() (*UserCreatedData, error) {
	if e == nil || e.Type != EventUserCreated {
		return nil, ErrInvalidPayload
	}

	data := &UserCreatedData{}
	if len(e.Data) == 0 {
		return nil, ErrInvalidPayload
	}

	if err := json.Unmarshal(e.Data, data); err != nil {
		return nil, ErrInvalidPayload
	}
	return data, nil
}

// PrimaryEmail returns the address whose ID is the primary email address ID.
func (d *UserCreatedData) PrimaryEmail() (EmailAddress, bool) {
	if d == nil {
		return EmailAddress{}, false
	}

	for _, addr := range d.EmailAddresses {
		if addr.ID == d.PrimaryEmailAddressID {
			return addr, true
		}
	}
	return EmailAddress{}, false
}

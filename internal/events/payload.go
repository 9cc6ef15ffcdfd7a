// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/sillage/internal/models"
)

// ErrMalformedEvent marks a message that can never be processed.
var ErrMalformedEvent = errors.New("malformed view event")

const (
	// metadataProductID lets consumers route without decoding the payload.
	metadataProductID = "product_id"

	// metadataEventType is always "view".
	metadataEventType = "event_type"
)

// viewPayload is the wire form of a view event.
type viewPayload struct {
	ID        string    `json:"id"`
	ProductID int64     `json:"product_id"`
	UserID    string    `json:"user_id,omitempty"`
	SessionID string    `json:"session_id"`
	ViewedAt  time.Time `json:"viewed_at"`
}

// NewViewMessage encodes event as a Watermill message whose UUID is the
// event id.
func NewViewMessage(event *models.ViewEvent) (*message.Message, error) {
	if event.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrMalformedEvent)
	}
	data, err := json.Marshal(viewPayload{
		ID:        event.ID,
		ProductID: event.ProductID,
		UserID:    event.UserID,
		SessionID: event.SessionID,
		ViewedAt:  event.ViewedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal view event: %w", err)
	}

	msg := message.NewMessage(event.ID, data)
	msg.Metadata.Set(metadataEventType, "view")
	msg.Metadata.Set(metadataProductID, fmt.Sprintf("%d", event.ProductID))
	return msg, nil
}

// DecodeViewMessage parses a message produced by NewViewMessage.
// Every error wraps ErrMalformedEvent.
func DecodeViewMessage(msg *message.Message) (models.ViewEvent, error) {
	var p viewPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		return models.ViewEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if p.ID == "" {
		p.ID = msg.UUID
	}
	switch {
	case p.ID == "":
		return models.ViewEvent{}, fmt.Errorf("%w: missing id", ErrMalformedEvent)
	case p.ProductID <= 0:
		return models.ViewEvent{}, fmt.Errorf("%w: product id %d", ErrMalformedEvent, p.ProductID)
	case p.SessionID == "":
		return models.ViewEvent{}, fmt.Errorf("%w: missing session id", ErrMalformedEvent)
	}
	return models.ViewEvent{
		ID:        p.ID,
		ProductID: p.ProductID,
		UserID:    p.UserID,
		SessionID: p.SessionID,
		ViewedAt:  p.ViewedAt,
	}, nil
}

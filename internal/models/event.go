package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventLog represents an event log entry
type EventLog struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	DeviceID *uuid.UUID `json:"deviceId,omitempty" db:"device_id"`
	NodeID   *uint8     `json:"nodeId,omitempty" db:"node_id"`

	Type        EventType  `json:"type" db:"type"`
	Level       EventLevel `json:"level" db:"level"`
	Code        string     `json:"code" db:"code"`
	Description string     `json:"description" db:"description"`

	Details Variables `json:"details,omitempty" db:"details"`
}

// EventType represents event types
type EventType string

const (
	// Device events
	EventTypeSwitch  EventType = "SWITCH"
	EventTypeButton  EventType = "BUTTON"
	EventTypeReport  EventType = "REPORT"
	EventTypeCommand EventType = "COMMAND"
	EventTypeError   EventType = "ERROR"

	// System events
	EventTypeInactivity EventType = "INACTIVITY"
	EventTypeAPICall    EventType = "API_CALL"
)

// EventLevel represents event severity levels
type EventLevel string

const (
	EventLevelDebug   EventLevel = "DEBUG"
	EventLevelInfo    EventLevel = "INFO"
	EventLevelWarning EventLevel = "WARNING"
	EventLevelError   EventLevel = "ERROR"
)

// Button actions carried by DeviceEvent
const (
	ButtonActionPushed       = "pushed"
	ButtonActionHeld         = "held"
	ButtonActionReleased     = "released"
	ButtonActionDoubleTapped = "doubleTapped"
)

// DeviceEvent is a decoded, non-persisted state change emitted by a
// device adapter and published to subscribers.
type DeviceEvent struct {
	NodeID uint8     `json:"nodeId"`
	Time   time.Time `json:"time"`

	Type EventType `json:"type"`

	// Switch events
	Switch string `json:"switch,omitempty"` // "on" or "off"

	// Button events
	Button int    `json:"button,omitempty"`
	Action string `json:"action,omitempty"`
}

// Describe renders the event as a log description
func (e DeviceEvent) Describe() string {
	switch e.Type {
	case EventTypeSwitch:
		return fmt.Sprintf("Switch turned %s", e.Switch)
	case EventTypeButton:
		return fmt.Sprintf("Button %d %s", e.Button, e.Action)
	default:
		return string(e.Type)
	}
}

package models

import (
	"time"
)

// Device represents a Z-Wave node paired with the hub
type Device struct {
	BaseModel

	// Identifiers
	NodeID uint8 `json:"nodeId" db:"node_id"`

	// Metadata
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`

	// Status
	IsDisabled bool       `json:"isDisabled" db:"is_disabled"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty" db:"last_seen_at"`

	// Inclusion
	SecureInclusion bool `json:"secureInclusion" db:"secure_inclusion"`

	// Version information reported by the node
	FirmwareVersion string `json:"firmwareVersion" db:"firmware_version"`
	ProtocolVersion string `json:"protocolVersion" db:"protocol_version"`
	HardwareVersion string `json:"hardwareVersion" db:"hardware_version"`
	SerialNumber    string `json:"serialNumber" db:"serial_number"`
}

// DeviceState is the non-persisted, point-in-time adapter state exposed
// over the API: cached LED sub-parameters and raw parameter values.
type DeviceState struct {
	NodeID     uint8            `json:"nodeId"`
	Switch     *string          `json:"switch,omitempty"`
	LEDs       map[int]LEDState `json:"leds"`
	Parameters map[uint8]uint32 `json:"parameters"`
	Firmware   string           `json:"firmware,omitempty"`
	Protocol   string           `json:"protocol,omitempty"`
	Hardware   string           `json:"hardware,omitempty"`
	Serial     string           `json:"serial,omitempty"`
}

// LEDState is one LED's cached sub-parameter values, as human strings
type LEDState struct {
	Mode       string `json:"mode,omitempty"`
	Color      string `json:"color,omitempty"`
	Brightness string `json:"brightness,omitempty"`
}

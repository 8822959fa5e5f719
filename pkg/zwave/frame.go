package zwave

import (
	"encoding/hex"
	"fmt"
)

// Frame represents a raw command-class frame: class, command and payload
type Frame struct {
	Class   CommandClass
	Command byte
	Payload []byte
}

// String returns hex string representation
func (f Frame) String() string {
	b, _ := f.MarshalBinary()
	return hex.EncodeToString(b)
}

// MarshalBinary marshals the frame to its wire representation
func (f Frame) MarshalBinary() ([]byte, error) {
	data := make([]byte, 0, 2+len(f.Payload))
	data = append(data, byte(f.Class), f.Command)
	data = append(data, f.Payload...)
	return data, nil
}

// UnmarshalBinary unmarshals a frame from its wire representation
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("frame too short: %d bytes", len(data))
	}

	f.Class = CommandClass(data[0])
	f.Command = data[1]
	f.Payload = data[2:]

	return nil
}

// Cmd is implemented by every typed command the hub can encode or decode
type Cmd interface {
	Class() CommandClass
	ID() byte
	MarshalBinary() ([]byte, error)
}

// Encode marshals a typed command into a complete frame byte sequence
func Encode(c Cmd) ([]byte, error) {
	payload, err := c.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", c, err)
	}

	f := Frame{Class: c.Class(), Command: c.ID(), Payload: payload}
	return f.MarshalBinary()
}

// Unrecognized carries a frame the hub has no typed decoder for. It is
// not an error: unknown frames are carried through and logged by callers.
type Unrecognized struct {
	Frame Frame
}

// Class returns the raw command class
func (u Unrecognized) Class() CommandClass { return u.Frame.Class }

// ID returns the raw command id
func (u Unrecognized) ID() byte { return u.Frame.Command }

// MarshalBinary returns the raw payload
func (u Unrecognized) MarshalBinary() ([]byte, error) { return u.Frame.Payload, nil }

// Parse decodes a raw frame into its typed command. Frames for which no
// decoder exists come back as Unrecognized; only structurally broken
// frames produce an error.
func Parse(data []byte) (Cmd, error) {
	var f Frame
	if err := f.UnmarshalBinary(data); err != nil {
		return nil, err
	}

	switch f.Class {
	case ClassBasic:
		switch f.Command {
		case BasicSetID:
			c := &BasicSet{}
			return c, c.UnmarshalBinary(f.Payload)
		case BasicReportID:
			c := &BasicReport{}
			return c, c.UnmarshalBinary(f.Payload)
		}

	case ClassSwitchBinary:
		if f.Command == SwitchBinaryReportID {
			c := &SwitchBinaryReport{}
			return c, c.UnmarshalBinary(f.Payload)
		}

	case ClassCentralScene:
		if f.Command == CentralSceneNotificationID {
			c := &CentralSceneNotification{}
			return c, c.UnmarshalBinary(f.Payload)
		}

	case ClassSupervision:
		if f.Command == SupervisionGetID {
			c := &SupervisionGet{}
			return c, c.UnmarshalBinary(f.Payload)
		}

	case ClassConfiguration:
		if f.Command == ConfigurationReportID {
			c := &ConfigurationReport{}
			return c, c.UnmarshalBinary(f.Payload)
		}

	case ClassManufacturerSpecific:
		if f.Command == DeviceSpecificReportID {
			c := &DeviceSpecificReport{}
			return c, c.UnmarshalBinary(f.Payload)
		}

	case ClassVersion:
		if f.Command == VersionReportID {
			c := &VersionReport{}
			return c, c.UnmarshalBinary(f.Payload)
		}

	case ClassIndicator:
		switch f.Command {
		case IndicatorReportID:
			c := &IndicatorReport{}
			return c, c.UnmarshalBinary(f.Payload)
		case IndicatorSupportedReportID:
			c := &IndicatorSupportedReport{}
			return c, c.UnmarshalBinary(f.Payload)
		}
	}

	return Unrecognized{Frame: f}, nil
}

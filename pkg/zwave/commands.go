package zwave

import (
	"encoding/hex"
	"fmt"
)

// ========== Basic ==========

// BasicSet sets the device's primary value (0x00 off, 0xFF on)
type BasicSet struct {
	Value byte
}

// Class returns the command class
func (c BasicSet) Class() CommandClass { return ClassBasic }

// ID returns the command id
func (c BasicSet) ID() byte { return BasicSetID }

// MarshalBinary marshals the command payload
func (c BasicSet) MarshalBinary() ([]byte, error) {
	return []byte{c.Value}, nil
}

// UnmarshalBinary unmarshals the command payload
func (c *BasicSet) UnmarshalBinary(data []byte) error {
	if len(data) < 1 {
		return fmt.Errorf("BasicSet too short: %d bytes", len(data))
	}
	c.Value = data[0]
	return nil
}

// BasicGet requests the device's primary value
type BasicGet struct{}

// Class returns the command class
func (c BasicGet) Class() CommandClass { return ClassBasic }

// ID returns the command id
func (c BasicGet) ID() byte { return BasicGetID }

// MarshalBinary marshals the command payload
func (c BasicGet) MarshalBinary() ([]byte, error) { return nil, nil }

// BasicReport carries the device's primary value
type BasicReport struct {
	Value byte
}

// Class returns the command class
func (c BasicReport) Class() CommandClass { return ClassBasic }

// ID returns the command id
func (c BasicReport) ID() byte { return BasicReportID }

// MarshalBinary marshals the command payload
func (c BasicReport) MarshalBinary() ([]byte, error) {
	return []byte{c.Value}, nil
}

// UnmarshalBinary unmarshals the command payload
func (c *BasicReport) UnmarshalBinary(data []byte) error {
	if len(data) < 1 {
		return fmt.Errorf("BasicReport too short: %d bytes", len(data))
	}
	c.Value = data[0]
	return nil
}

// ========== SwitchBinary ==========

// SwitchBinaryReport carries the relay's on/off state
type SwitchBinaryReport struct {
	Value byte
}

// Class returns the command class
func (c SwitchBinaryReport) Class() CommandClass { return ClassSwitchBinary }

// ID returns the command id
func (c SwitchBinaryReport) ID() byte { return SwitchBinaryReportID }

// MarshalBinary marshals the command payload
func (c SwitchBinaryReport) MarshalBinary() ([]byte, error) {
	return []byte{c.Value}, nil
}

// UnmarshalBinary unmarshals the command payload
func (c *SwitchBinaryReport) UnmarshalBinary(data []byte) error {
	if len(data) < 1 {
		return fmt.Errorf("SwitchBinaryReport too short: %d bytes", len(data))
	}
	c.Value = data[0]
	return nil
}

// ========== Configuration ==========

// ConfigurationSet writes a configuration parameter value
type ConfigurationSet struct {
	Parameter byte
	Size      byte // 1, 2 or 4 bytes
	Value     uint32
}

// Class returns the command class
func (c ConfigurationSet) Class() CommandClass { return ClassConfiguration }

// ID returns the command id
func (c ConfigurationSet) ID() byte { return ConfigurationSetID }

// MarshalBinary marshals the command payload
func (c ConfigurationSet) MarshalBinary() ([]byte, error) {
	value, err := scaledValueBytes(c.Size, c.Value)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, 2+len(value))
	data = append(data, c.Parameter, c.Size)
	data = append(data, value...)
	return data, nil
}

// ConfigurationGet requests a configuration parameter value
type ConfigurationGet struct {
	Parameter byte
}

// Class returns the command class
func (c ConfigurationGet) Class() CommandClass { return ClassConfiguration }

// ID returns the command id
func (c ConfigurationGet) ID() byte { return ConfigurationGetID }

// MarshalBinary marshals the command payload
func (c ConfigurationGet) MarshalBinary() ([]byte, error) {
	return []byte{c.Parameter}, nil
}

// ConfigurationReport echoes a configuration parameter value
type ConfigurationReport struct {
	Parameter byte
	Size      byte
	Value     uint32
}

// Class returns the command class
func (c ConfigurationReport) Class() CommandClass { return ClassConfiguration }

// ID returns the command id
func (c ConfigurationReport) ID() byte { return ConfigurationReportID }

// MarshalBinary marshals the command payload
func (c ConfigurationReport) MarshalBinary() ([]byte, error) {
	value, err := scaledValueBytes(c.Size, c.Value)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, 2+len(value))
	data = append(data, c.Parameter, c.Size)
	data = append(data, value...)
	return data, nil
}

// UnmarshalBinary unmarshals the command payload
func (c *ConfigurationReport) UnmarshalBinary(data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("ConfigurationReport too short: %d bytes", len(data))
	}

	c.Parameter = data[0]
	c.Size = data[1]

	if c.Size != 1 && c.Size != 2 && c.Size != 4 {
		return fmt.Errorf("ConfigurationReport bad size: %d", c.Size)
	}
	if len(data) < 2+int(c.Size) {
		return fmt.Errorf("ConfigurationReport value truncated: %d < %d bytes",
			len(data)-2, c.Size)
	}

	c.Value = 0
	for _, b := range data[2 : 2+c.Size] {
		c.Value = c.Value<<8 | uint32(b)
	}

	return nil
}

// scaledValueBytes encodes a scaled configuration value big-endian at the
// declared byte size.
func scaledValueBytes(size byte, value uint32) ([]byte, error) {
	switch size {
	case 1:
		return []byte{byte(value)}, nil
	case 2:
		return []byte{byte(value >> 8), byte(value)}, nil
	case 4:
		return []byte{byte(value >> 24), byte(value >> 16), byte(value >> 8), byte(value)}, nil
	default:
		return nil, fmt.Errorf("bad configuration value size: %d", size)
	}
}

// ========== CentralScene ==========

// CentralSceneNotification reports a button event from the scene controller
type CentralSceneNotification struct {
	SequenceNumber byte
	KeyAttribute   KeyAttribute
	SceneNumber    byte
	SlowRefresh    bool
}

// Class returns the command class
func (c CentralSceneNotification) Class() CommandClass { return ClassCentralScene }

// ID returns the command id
func (c CentralSceneNotification) ID() byte { return CentralSceneNotificationID }

// MarshalBinary marshals the command payload
func (c CentralSceneNotification) MarshalBinary() ([]byte, error) {
	attr := byte(c.KeyAttribute) & 0x07
	if c.SlowRefresh {
		attr |= 0x80
	}
	return []byte{c.SequenceNumber, attr, c.SceneNumber}, nil
}

// UnmarshalBinary unmarshals the command payload
func (c *CentralSceneNotification) UnmarshalBinary(data []byte) error {
	if len(data) < 3 {
		return fmt.Errorf("CentralSceneNotification too short: %d bytes", len(data))
	}

	c.SequenceNumber = data[0]
	c.KeyAttribute = KeyAttribute(data[1] & 0x07)
	c.SlowRefresh = data[1]&0x80 != 0
	c.SceneNumber = data[2]

	return nil
}

// ========== Supervision ==========

// SupervisionGet encapsulates another command under a supervision session
type SupervisionGet struct {
	SessionID     byte // 6 bits
	StatusUpdates bool
	Encapsulated  []byte
}

// Class returns the command class
func (c SupervisionGet) Class() CommandClass { return ClassSupervision }

// ID returns the command id
func (c SupervisionGet) ID() byte { return SupervisionGetID }

// MarshalBinary marshals the command payload
func (c SupervisionGet) MarshalBinary() ([]byte, error) {
	session := c.SessionID & 0x3F
	if c.StatusUpdates {
		session |= 0x80
	}

	data := make([]byte, 0, 2+len(c.Encapsulated))
	data = append(data, session, byte(len(c.Encapsulated)))
	data = append(data, c.Encapsulated...)
	return data, nil
}

// UnmarshalBinary unmarshals the command payload
func (c *SupervisionGet) UnmarshalBinary(data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("SupervisionGet too short: %d bytes", len(data))
	}

	c.SessionID = data[0] & 0x3F
	c.StatusUpdates = data[0]&0x80 != 0

	length := int(data[1])
	if len(data) < 2+length {
		return fmt.Errorf("SupervisionGet encapsulated command truncated: %d < %d bytes",
			len(data)-2, length)
	}
	c.Encapsulated = data[2 : 2+length]

	return nil
}

// SupervisionReport acknowledges a supervised command
type SupervisionReport struct {
	SessionID   byte
	MoreUpdates bool
	Status      byte
	Duration    byte
}

// Class returns the command class
func (c SupervisionReport) Class() CommandClass { return ClassSupervision }

// ID returns the command id
func (c SupervisionReport) ID() byte { return SupervisionReportID }

// MarshalBinary marshals the command payload
func (c SupervisionReport) MarshalBinary() ([]byte, error) {
	session := c.SessionID & 0x3F
	if c.MoreUpdates {
		session |= 0x80
	}
	return []byte{session, c.Status, c.Duration}, nil
}

// ========== Version ==========

// VersionGet requests the device's version information
type VersionGet struct{}

// Class returns the command class
func (c VersionGet) Class() CommandClass { return ClassVersion }

// ID returns the command id
func (c VersionGet) ID() byte { return VersionGetID }

// MarshalBinary marshals the command payload
func (c VersionGet) MarshalBinary() ([]byte, error) { return nil, nil }

// VersionReport carries firmware, protocol and hardware versions (v2)
type VersionReport struct {
	LibraryType        byte
	ProtocolVersion    byte
	ProtocolSubVersion byte
	FirmwareVersion    byte
	FirmwareSubVersion byte
	HardwareVersion    byte
}

// Class returns the command class
func (c VersionReport) Class() CommandClass { return ClassVersion }

// ID returns the command id
func (c VersionReport) ID() byte { return VersionReportID }

// MarshalBinary marshals the command payload
func (c VersionReport) MarshalBinary() ([]byte, error) {
	return []byte{
		c.LibraryType,
		c.ProtocolVersion, c.ProtocolSubVersion,
		c.FirmwareVersion, c.FirmwareSubVersion,
		c.HardwareVersion,
		0, // additional firmware targets
	}, nil
}

// UnmarshalBinary unmarshals the command payload. The v1 report stops
// after the firmware version; the hardware version is v2 only.
func (c *VersionReport) UnmarshalBinary(data []byte) error {
	if len(data) < 5 {
		return fmt.Errorf("VersionReport too short: %d bytes", len(data))
	}

	c.LibraryType = data[0]
	c.ProtocolVersion = data[1]
	c.ProtocolSubVersion = data[2]
	c.FirmwareVersion = data[3]
	c.FirmwareSubVersion = data[4]

	if len(data) >= 6 {
		c.HardwareVersion = data[5]
	}

	return nil
}

// Firmware returns the dotted firmware version string
func (c VersionReport) Firmware() string {
	return fmt.Sprintf("%d.%02d", c.FirmwareVersion, c.FirmwareSubVersion)
}

// Protocol returns the dotted protocol version string
func (c VersionReport) Protocol() string {
	return fmt.Sprintf("%d.%02d", c.ProtocolVersion, c.ProtocolSubVersion)
}

// ========== ManufacturerSpecific ==========

// Device id types for DeviceSpecificGet
const (
	DeviceIDTypeFactoryDefault byte = 0x00
	DeviceIDTypeSerialNumber   byte = 0x01
)

// Device id data formats for DeviceSpecificReport
const (
	DeviceIDFormatUTF8   byte = 0x00
	DeviceIDFormatBinary byte = 0x01
)

// DeviceSpecificGet requests a device identifier such as the serial number
type DeviceSpecificGet struct {
	IDType byte
}

// Class returns the command class
func (c DeviceSpecificGet) Class() CommandClass { return ClassManufacturerSpecific }

// ID returns the command id
func (c DeviceSpecificGet) ID() byte { return DeviceSpecificGetID }

// MarshalBinary marshals the command payload
func (c DeviceSpecificGet) MarshalBinary() ([]byte, error) {
	return []byte{c.IDType & 0x07}, nil
}

// DeviceSpecificReport carries a device identifier
type DeviceSpecificReport struct {
	IDType byte
	Format byte
	Data   []byte
}

// Class returns the command class
func (c DeviceSpecificReport) Class() CommandClass { return ClassManufacturerSpecific }

// ID returns the command id
func (c DeviceSpecificReport) ID() byte { return DeviceSpecificReportID }

// MarshalBinary marshals the command payload
func (c DeviceSpecificReport) MarshalBinary() ([]byte, error) {
	data := make([]byte, 0, 2+len(c.Data))
	data = append(data, c.IDType&0x07, c.Format<<5|byte(len(c.Data))&0x1F)
	data = append(data, c.Data...)
	return data, nil
}

// UnmarshalBinary unmarshals the command payload
func (c *DeviceSpecificReport) UnmarshalBinary(data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("DeviceSpecificReport too short: %d bytes", len(data))
	}

	c.IDType = data[0] & 0x07
	c.Format = data[1] >> 5

	length := int(data[1] & 0x1F)
	if len(data) < 2+length {
		return fmt.Errorf("DeviceSpecificReport data truncated: %d < %d bytes",
			len(data)-2, length)
	}
	c.Data = data[2 : 2+length]

	return nil
}

// SerialNumber renders the identifier: binary format hex-encodes the
// bytes, UTF-8 format treats them as raw character codes.
func (c DeviceSpecificReport) SerialNumber() string {
	if c.Format == DeviceIDFormatBinary {
		return hex.EncodeToString(c.Data)
	}
	return string(c.Data)
}

// ========== Indicator ==========

// IndicatorProperty is one (indicator id, property id, value) triplet
type IndicatorProperty struct {
	IndicatorID byte
	PropertyID  byte
	Value       byte
}

// IndicatorSet writes one or more indicator properties (v3)
type IndicatorSet struct {
	Value      byte // legacy indicator 0 value
	Properties []IndicatorProperty
}

// Class returns the command class
func (c IndicatorSet) Class() CommandClass { return ClassIndicator }

// ID returns the command id
func (c IndicatorSet) ID() byte { return IndicatorSetID }

// MarshalBinary marshals the command payload
func (c IndicatorSet) MarshalBinary() ([]byte, error) {
	if len(c.Properties) > 0x1F {
		return nil, fmt.Errorf("too many indicator properties: %d", len(c.Properties))
	}

	data := make([]byte, 0, 2+3*len(c.Properties))
	data = append(data, c.Value, byte(len(c.Properties))&0x1F)
	for _, p := range c.Properties {
		data = append(data, p.IndicatorID, p.PropertyID, p.Value)
	}
	return data, nil
}

// IndicatorGet requests an indicator's properties
type IndicatorGet struct {
	IndicatorID byte
}

// Class returns the command class
func (c IndicatorGet) Class() CommandClass { return ClassIndicator }

// ID returns the command id
func (c IndicatorGet) ID() byte { return IndicatorGetID }

// MarshalBinary marshals the command payload
func (c IndicatorGet) MarshalBinary() ([]byte, error) {
	return []byte{c.IndicatorID}, nil
}

// IndicatorReport carries an indicator's current properties
type IndicatorReport struct {
	Value      byte
	Properties []IndicatorProperty
}

// Class returns the command class
func (c IndicatorReport) Class() CommandClass { return ClassIndicator }

// ID returns the command id
func (c IndicatorReport) ID() byte { return IndicatorReportID }

// MarshalBinary marshals the command payload
func (c IndicatorReport) MarshalBinary() ([]byte, error) {
	data := make([]byte, 0, 2+3*len(c.Properties))
	data = append(data, c.Value, byte(len(c.Properties))&0x1F)
	for _, p := range c.Properties {
		data = append(data, p.IndicatorID, p.PropertyID, p.Value)
	}
	return data, nil
}

// UnmarshalBinary unmarshals the command payload
func (c *IndicatorReport) UnmarshalBinary(data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("IndicatorReport too short: %d bytes", len(data))
	}

	c.Value = data[0]
	count := int(data[1] & 0x1F)
	if len(data) < 2+3*count {
		return fmt.Errorf("IndicatorReport properties truncated: %d < %d bytes",
			len(data)-2, 3*count)
	}

	c.Properties = make([]IndicatorProperty, 0, count)
	for i := 0; i < count; i++ {
		pos := 2 + 3*i
		c.Properties = append(c.Properties, IndicatorProperty{
			IndicatorID: data[pos],
			PropertyID:  data[pos+1],
			Value:       data[pos+2],
		})
	}

	return nil
}

// IndicatorSupportedGet requests the property capabilities of an indicator
type IndicatorSupportedGet struct {
	IndicatorID byte
}

// Class returns the command class
func (c IndicatorSupportedGet) Class() CommandClass { return ClassIndicator }

// ID returns the command id
func (c IndicatorSupportedGet) ID() byte { return IndicatorSupportedGetID }

// MarshalBinary marshals the command payload
func (c IndicatorSupportedGet) MarshalBinary() ([]byte, error) {
	return []byte{c.IndicatorID}, nil
}

// IndicatorSupportedReport describes one indicator's capabilities and
// links to the next supported indicator id (0 terminates the chain).
type IndicatorSupportedReport struct {
	IndicatorID     byte
	NextIndicatorID byte
	Properties      []byte // property-supported bitmask
}

// Class returns the command class
func (c IndicatorSupportedReport) Class() CommandClass { return ClassIndicator }

// ID returns the command id
func (c IndicatorSupportedReport) ID() byte { return IndicatorSupportedReportID }

// MarshalBinary marshals the command payload
func (c IndicatorSupportedReport) MarshalBinary() ([]byte, error) {
	data := make([]byte, 0, 3+len(c.Properties))
	data = append(data, c.IndicatorID, c.NextIndicatorID, byte(len(c.Properties))&0x1F)
	data = append(data, c.Properties...)
	return data, nil
}

// UnmarshalBinary unmarshals the command payload
func (c *IndicatorSupportedReport) UnmarshalBinary(data []byte) error {
	if len(data) < 3 {
		return fmt.Errorf("IndicatorSupportedReport too short: %d bytes", len(data))
	}

	c.IndicatorID = data[0]
	c.NextIndicatorID = data[1]

	length := int(data[2] & 0x1F)
	if len(data) < 3+length {
		return fmt.Errorf("IndicatorSupportedReport bitmask truncated: %d < %d bytes",
			len(data)-3, length)
	}
	c.Properties = data[3 : 3+length]

	return nil
}

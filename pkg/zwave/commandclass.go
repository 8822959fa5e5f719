package zwave

// CommandClass identifies a Z-Wave command class namespace
type CommandClass byte

// Command classes spoken by the hub
const (
	ClassBasic                CommandClass = 0x20
	ClassSwitchBinary         CommandClass = 0x25
	ClassTransportService     CommandClass = 0x55
	ClassZIPNaming            CommandClass = 0x59
	ClassCentralScene         CommandClass = 0x5B
	ClassSupervision          CommandClass = 0x6C
	ClassConfiguration        CommandClass = 0x70
	ClassManufacturerSpecific CommandClass = 0x72
	ClassAssociation          CommandClass = 0x85
	ClassVersion              CommandClass = 0x86
	ClassIndicator            CommandClass = 0x87
	ClassMultiChannelAssoc    CommandClass = 0x8E
	ClassSecurity             CommandClass = 0x98
	ClassSecurity2            CommandClass = 0x9F
)

// classVersions lists the command-class versions the hub negotiates with
// the device firmware. This table is a protocol contract and must match
// what the devices report during interview.
var classVersions = map[CommandClass]uint8{
	ClassBasic:                1,
	ClassSwitchBinary:         1,
	ClassTransportService:     1,
	ClassZIPNaming:            1,
	ClassCentralScene:         1,
	ClassSupervision:          1,
	ClassConfiguration:        1,
	ClassManufacturerSpecific: 2,
	ClassAssociation:          1,
	ClassVersion:              2,
	ClassIndicator:            3,
	ClassMultiChannelAssoc:    2,
	ClassSecurity:             1,
	ClassSecurity2:            1,
}

// VersionOf returns the negotiated version for a command class, or 0
// when the class is not part of the hub's contract.
func VersionOf(cc CommandClass) uint8 {
	return classVersions[cc]
}

// Command identifiers, grouped by command class
const (
	// Basic
	BasicSetID    byte = 0x01
	BasicGetID    byte = 0x02
	BasicReportID byte = 0x03

	// SwitchBinary
	SwitchBinarySetID    byte = 0x01
	SwitchBinaryGetID    byte = 0x02
	SwitchBinaryReportID byte = 0x03

	// CentralScene
	CentralSceneSupportedGetID byte = 0x01
	CentralSceneNotificationID byte = 0x03

	// Supervision
	SupervisionGetID    byte = 0x01
	SupervisionReportID byte = 0x02

	// Configuration
	ConfigurationSetID    byte = 0x04
	ConfigurationGetID    byte = 0x05
	ConfigurationReportID byte = 0x06

	// ManufacturerSpecific
	ManufacturerSpecificGetID byte = 0x04
	DeviceSpecificGetID       byte = 0x06
	DeviceSpecificReportID    byte = 0x07

	// Version
	VersionGetID    byte = 0x11
	VersionReportID byte = 0x12

	// Indicator
	IndicatorSetID             byte = 0x01
	IndicatorGetID             byte = 0x02
	IndicatorReportID          byte = 0x03
	IndicatorSupportedGetID    byte = 0x04
	IndicatorSupportedReportID byte = 0x05
)

// Supervision status codes
const (
	SupervisionStatusNoSupport byte = 0x00
	SupervisionStatusWorking   byte = 0x01
	SupervisionStatusFail      byte = 0x02
	SupervisionStatusSuccess   byte = 0xFF
)

// Indicator property identifiers (Indicator CC v3)
const (
	IndicatorPropMultilevel  byte = 0x01
	IndicatorPropBinary      byte = 0x02
	IndicatorPropOffPeriod   byte = 0x03
	IndicatorPropOnOffCycles byte = 0x04
	IndicatorPropOnPeriod    byte = 0x05
)

// KeyAttribute encodes how a CentralScene button event was produced
type KeyAttribute byte

// Key attributes per the CentralScene specification
const (
	KeyPressed1 KeyAttribute = 0x00
	KeyReleased KeyAttribute = 0x01
	KeyHeldDown KeyAttribute = 0x02
	KeyPressed2 KeyAttribute = 0x03
	KeyPressed3 KeyAttribute = 0x04
	KeyPressed4 KeyAttribute = 0x05
	KeyPressed5 KeyAttribute = 0x06
)

// TapCount returns the number of consecutive taps for press attributes
// (1-5) and 0 for hold/release attributes.
func (k KeyAttribute) TapCount() int {
	switch k {
	case KeyPressed1:
		return 1
	case KeyPressed2:
		return 2
	case KeyPressed3:
		return 3
	case KeyPressed4:
		return 4
	case KeyPressed5:
		return 5
	default:
		return 0
	}
}

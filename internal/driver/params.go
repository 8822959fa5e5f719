package driver

// Parameter describes one configuration parameter of the scene
// controller: its wire size, value domain and bootstrap default. The
// table is a versioned contract with the device firmware.
type Parameter struct {
	Number  uint8             `json:"number"`
	Name    string            `json:"name"`
	Size    byte              `json:"size"` // encoded wire size: 1, 2 or 4 bytes
	Min     uint32            `json:"min"`
	Max     uint32            `json:"max"`
	Default uint32            `json:"default"`
	Values  map[uint32]string `json:"values,omitempty"` // enumerated domains; nil for plain ranges
}

// Device-level configuration parameters (16-26). Parameters 1-15 are the
// per-LED sub-parameters defined in led.go.
const (
	ParamAutoOffTimer       uint8 = 16
	ParamAutoOnTimer        uint8 = 17
	ParamPowerRestore       uint8 = 18
	ParamPhysicalLockout    uint8 = 19
	ParamZWaveLockout       uint8 = 20
	ParamThreeWaySwitchType uint8 = 21
	ParamProgrammingLock    uint8 = 22
	ParamFlashOnChange      uint8 = 23
	ParamRelaySceneEvents   uint8 = 24
	ParamAssociationReports uint8 = 25
	ParamRelayLEDOverride   uint8 = 26
)

var parameterTable = map[uint8]Parameter{
	ParamAutoOffTimer: {
		Number: ParamAutoOffTimer, Name: "relay auto turn-off timer",
		Size: 4, Min: 0, Max: 65535, Default: 0,
	},
	ParamAutoOnTimer: {
		Number: ParamAutoOnTimer, Name: "relay auto turn-on timer",
		Size: 4, Min: 0, Max: 65535, Default: 0,
	},
	ParamPowerRestore: {
		Number: ParamPowerRestore, Name: "on/off status after power failure",
		Size: 1, Min: 0, Max: 2, Default: 2,
		Values: map[uint32]string{0: "forced off", 1: "forced on", 2: "restore previous"},
	},
	ParamPhysicalLockout: {
		Number: ParamPhysicalLockout, Name: "physical button relay control",
		Size: 1, Min: 0, Max: 1, Default: 0,
		Values: map[uint32]string{0: "enabled", 1: "disabled"},
	},
	ParamZWaveLockout: {
		Number: ParamZWaveLockout, Name: "Z-Wave relay control",
		Size: 1, Min: 0, Max: 1, Default: 0,
		Values: map[uint32]string{0: "enabled", 1: "disabled"},
	},
	ParamThreeWaySwitchType: {
		Number: ParamThreeWaySwitchType, Name: "3-way switch type",
		Size: 1, Min: 0, Max: 1, Default: 0,
		Values: map[uint32]string{0: "toggle", 1: "momentary"},
	},
	ParamProgrammingLock: {
		Number: ParamProgrammingLock, Name: "programming from the panel",
		Size: 1, Min: 0, Max: 1, Default: 0,
		Values: map[uint32]string{0: "unlocked", 1: "locked"},
	},
	ParamFlashOnChange: {
		Number: ParamFlashOnChange, Name: "LED flash on setting change",
		Size: 1, Min: 0, Max: 1, Default: 1,
		Values: map[uint32]string{0: "disabled", 1: "enabled"},
	},
	ParamRelaySceneEvents: {
		Number: ParamRelaySceneEvents, Name: "scene events for relay button",
		Size: 1, Min: 0, Max: 1, Default: 1,
		Values: map[uint32]string{0: "disabled", 1: "enabled"},
	},
	ParamAssociationReports: {
		Number: ParamAssociationReports, Name: "association report verbosity",
		Size: 1, Min: 0, Max: 15, Default: 15,
	},
	ParamRelayLEDOverride: {
		Number: ParamRelayLEDOverride, Name: "relay LED override",
		Size: 1, Min: 0, Max: 1, Default: 0,
		Values: map[uint32]string{0: "disabled", 1: "enabled"},
	},
}

// LookupParameter returns the table entry for a parameter number
func LookupParameter(number uint8) (Parameter, bool) {
	p, ok := parameterTable[number]
	return p, ok
}

// Parameters returns the device-level parameter table
func Parameters() []Parameter {
	params := make([]Parameter, 0, len(parameterTable))
	for n := ParamAutoOffTimer; n <= ParamRelayLEDOverride; n++ {
		params = append(params, parameterTable[n])
	}
	return params
}
